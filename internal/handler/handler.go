package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kohi-academy/training-portal/backend/internal/config"
	"github.com/kohi-academy/training-portal/backend/internal/domain"
	"github.com/kohi-academy/training-portal/backend/internal/repository"
	"github.com/kohi-academy/training-portal/backend/internal/scheduler"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	scheduler   *scheduler.Manager
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	location    *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mgr *scheduler.Manager, mailCh *amqp.Channel, rdb *redis.Client, location *time.Location) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		scheduler:   mgr,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		location:    location,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/my-notifications", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyNotifications)
			r.Patch("/{id}/read", h.MarkMyNotificationRead)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 学员需要能看到讲师的信息，所以不限制角色
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)

				// 管理员维护讲师名下的学员名单，也就是课程通知的参与者来源
				r.Route("/students", func(r chi.Router) {
					r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
					r.Get("/", h.GetAssignedStudents)
					r.Post("/{studentID}", h.AssignStudent)
					r.Delete("/{studentID}", h.UnassignStudent)
				})
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.RequiredRole([]domain.Role{domain.RoleInstructor})).Post("/", h.CreateSession)
			r.Get("/", h.GetMySessions)
			r.Get("/calendar", h.GetSessionCalendar)
			r.Get("/occurrences", h.GetSessionOccurrences)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.session)
				r.Get("/", h.GetSession)
				r.With(h.sessionOwnerOnly).Patch("/", h.UpdateSession)
				r.With(h.sessionOwnerOnly).Delete("/", h.DeleteSession)
			})
		})
	})
}
