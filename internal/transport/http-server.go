package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/config"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/db"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/service"
)

type (
	UserReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=12"`
	}

	TokenResp struct {
		Token string `json:"token"`
	}

	BookmarkCreateReq struct {
		URL  string   `json:"url" validate:"required"`
		Tags []string `json:"tags"`
	}

	BookmarkResp struct {
		ID        uint64    `json:"id"`
		URL       string    `json:"url"`
		Title     *string   `json:"title,omitempty"`
		Favicon   *string   `json:"favicon,omitempty"`
		Summary   *string   `json:"summary,omitempty"`
		Tags      []string  `json:"tags"`
		CreatedAt time.Time `json:"createdAt"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		db      *gorm.DB
		general *service.General
		ingest  *service.Ingestor
		repo    service.Repository
		logger  *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	dbc *gorm.DB,
	general *service.General,
	ingest *service.Ingestor,
	repo service.Repository,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()

	instance := HTTPServer{
		db:      dbc,
		general: general,
		ingest:  ingest,
		repo:    repo,
		logger:  logger,
	}

	e.POST("/auth/register", instance.Register)
	e.POST("/auth/login", instance.Login)

	bookmarkG := e.Group("/bookmark")
	bookmarkG.GET("", instance.BookmarkList)
	bookmarkG.POST("", instance.BookmarkCreate)
	bookmarkG.DELETE("", instance.BookmarkDelete)

	e.GET("/tag", instance.TagList)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if len(reqBody) == 0 {
			return
		}
		logger.Debugw("request body", "path", c.Path(), "body", string(censorBody(reqBody)))
	}))

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func (s *HTTPServer) Register(c echo.Context) error {
	u := UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.general.Register(c.Request().Context(), u.Email, u.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &TokenResp{Token: token})
}

func (s *HTTPServer) Login(c echo.Context) error {
	u := UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.general.Login(c.Request().Context(), u.Email, u.Password)
	if err != nil {
		if err == service.ErrLoginUserNotFound || err == service.ErrLoginPasswordDoesNotMatch {
			return c.NoContent(http.StatusUnauthorized)
		}
		return err
	}
	return c.JSON(http.StatusOK, &TokenResp{Token: token})
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	bookmark, err := s.ingest.Ingest(c.Request().Context(), user.ID, req.URL, req.Tags)
	if err != nil {
		if errors.Cause(err) == service.ErrInvalidURL {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
		}
		return err
	}

	return c.JSON(http.StatusCreated, toBookmarkResp(bookmark))
}

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	bookmarks, err := s.repo.ListByOwner(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]BookmarkResp, len(bookmarks))
	for i := range bookmarks {
		resp[i] = toBookmarkResp(&bookmarks[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	idStr := c.QueryParam("id")
	if idStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query param 'id'")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'id'")
	}

	if err := s.repo.DeleteByID(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	tags, err := s.repo.DistinctTags(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/auth/register" || c.Path() == "/auth/login" || c.Path() == "/ping" {
			return next(c)
		}
		token := ""
		for key, values := range c.Request().Header {
			if strings.ToLower(key) == "x-token" {
				token = values[0]
				break
			}
		}
		if token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}
		user := db.User{}
		res := s.db.Where("token = ?", token).First(&user)
		if res.Error != nil {
			s.logger.Warnw("find user by token", "error", res.Error)
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", &user)
		return next(c)
	}
}

////////

func toBookmarkResp(b *db.Bookmark) BookmarkResp {
	tags := []string(b.Tags)
	if tags == nil {
		tags = []string{}
	}
	return BookmarkResp{
		ID:        b.ID,
		URL:       b.URL,
		Title:     b.Title,
		Favicon:   b.Favicon,
		Summary:   b.Summary,
		Tags:      tags,
		CreatedAt: b.CreatedAt,
	}
}

// censorBody blanks out credential fields before a request body hits the log.
func censorBody(b []byte) []byte {
	body := map[string]interface{}{}
	if err := json.Unmarshal(b, &body); err != nil {
		return b
	}
	if _, ok := body["password"]; ok {
		body["password"] = "$censored"
	}
	censored, err := json.Marshal(body)
	if err != nil {
		return b
	}
	return censored
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get("user").(*db.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "no user in context")
	}
	return user, nil
}
