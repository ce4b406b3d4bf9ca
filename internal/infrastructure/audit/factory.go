package audit

import (
	"context"
	"fmt"
	"io"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/domain/repository"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// NewAuditService selects the sink named by cfg.Sink. The returned closer must be
// closed on shutdown; it is a no-op for sinks that hold no resources.
func NewAuditService(cfg *config.AuditConfig, repo repository.AuditRepository, log logger.Logger) (service.AuditService, io.Closer, error) {
	switch cfg.Sink {
	case constants.AuditSinkKafka:
		p := NewKafkaProducer(cfg.Kafka, log)
		log.Info(context.Background(), "Audit events go to Kafka",
			logger.Strings("brokers", cfg.Kafka.Brokers),
			logger.String("topic", cfg.Kafka.Topic),
		)
		return p, p, nil
	case constants.AuditSinkDatabase:
		if repo == nil {
			return nil, nil, errors.ErrInvalidConfig.WithDescription("database audit sink requires a database")
		}
		return NewGormAuditService(repo), nopCloser{}, nil
	case constants.AuditSinkNone, "":
		return NoopAuditService{}, nopCloser{}, nil
	default:
		return nil, nil, errors.ErrInvalidConfig.WithDescription(fmt.Sprintf("unknown audit sink %q", cfg.Sink))
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
