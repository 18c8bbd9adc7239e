package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

// Cache is the subset of infra.RedisClient the service relies on.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, message produce.ChangeMessage) error
}

type ReportPublisher interface {
	PublishSystemReport(ctx context.Context, message produce.ReportJobMessage) error
}

// ReportStorage stores rendered reports and hands out download links.
type ReportStorage interface {
	PutReport(ctx context.Context, key string, data []byte) (int64, error)
	PresignedReportURL(ctx context.Context, key string, fileName string, expiry time.Duration) (string, error)
	DeleteReport(ctx context.Context, key string) error
}

type Options struct {
	Cache    Cache
	Changes  ChangePublisher
	Reports  ReportPublisher
	Storage  ReportStorage
	CacheTTL time.Duration
}

type Service struct {
	repo     *repository.Repository
	logger   *infra.LoggerClient
	cache    Cache
	changes  ChangePublisher
	reports  ReportPublisher
	storage  ReportStorage
	cacheTTL time.Duration
	validate *validator.Validate
	now      func() time.Time
}

var serviceInstance *Service

func NewService(repo *repository.Repository, logger *infra.LoggerClient, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		cache:    opts.Cache,
		changes:  opts.Changes,
		reports:  opts.Reports,
		storage:  opts.Storage,
		cacheTTL: ttl,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func InitService(cfg *config.Config, inf *infra.Infra, repo *repository.Repository) *Service {
	if serviceInstance != nil {
		return serviceInstance
	}
	serviceInstance = NewService(repo, inf.Logger, Options{
		Cache:    inf.Redis,
		Changes:  inf.Produce.InventoryService,
		Reports:  inf.Produce.ReportService,
		Storage:  inf.Minio,
		CacheTTL: time.Duration(cfg.EnvConfig.Cache.TTLSeconds) * time.Second,
	})
	return serviceInstance
}

func GetService() *Service {
	if serviceInstance == nil {
		panic("Service not initialized. Call InitService() first.")
	}
	return serviceInstance
}

type actorKey struct{}

// WithActor records the authenticated user id on ctx for change notifications.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) validateInput(input interface{}) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		field := strings.TrimPrefix(fe.Namespace(), reflect.Indirect(reflect.ValueOf(input)).Type().Name()+".")
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return utils.NewValidationError(field, reason)
	}
	return utils.NewValidationError("input", err.Error())
}

// db returns the repository bound to the request context.
func (s *Service) db(ctx context.Context) *repository.Repository {
	return s.repo.WithContext(ctx)
}

// wrapError converts repository errors into API errors for the named entity.
func (s *Service) wrapError(ctx context.Context, err error, entityName string) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFoundError(entityName)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return utils.NewConflictError(entityName + " already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	s.logger.ErrorWithContextf(ctx, err, "[Inventory] Unexpected error on %s", entityName)
	return utils.NewInternalError(err)
}

// publishChange announces a committed mutation. Failures are logged only.
func (s *Service) publishChange(ctx context.Context, entityName, action, id string) {
	s.publish(ctx, produce.ChangeMessage{Entity: entityName, Action: action, ID: id})
}

func (s *Service) publish(ctx context.Context, msg produce.ChangeMessage) {
	s.invalidateOptions(ctx, msg.Entity)
	if s.changes == nil {
		return
	}
	msg.Actor = ActorFromContext(ctx)
	msg.Timestamp = s.now()
	if err := s.changes.PublishChange(ctx, msg); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Inventory] Failed to publish %s", msg.RoutingKey())
	}
}
