package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasktrack-api/domain"
	"tasktrack-api/service"
)

// Register wires up all API routes on the provided Echo instance. A nil
// throttle disables login rate limiting.
func Register(e *echo.Echo, svc Service, auth Authenticator, throttle Throttle, logger *log.Logger) {
	e.GET("/healthz", healthz())

	users := e.Group("/api/users")
	users.POST("/register", registerUser(svc, auth))
	users.POST("/login", loginUser(svc, auth, throttle, logger))
	users.GET("/profile", getProfile(), RequireAuth(svc, auth))

	tasks := e.Group("/api/tasks", RequireAuth(svc, auth))
	tasks.POST("", createTask(svc))
	tasks.GET("", listTasks(svc, logger))
	tasks.GET("/:id", getTask(svc))
	tasks.PUT("/:id", updateTask(svc))
	tasks.DELETE("/:id", deleteTask(svc))
	tasks.POST("/:id/attachments", uploadAttachment(svc))
	tasks.DELETE("/:id/attachments/:attachmentId", deleteAttachment(svc))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decodeBody strictly decodes a JSON request body, rejecting unknown fields
// and bodies over the limit.
func decodeBody(c echo.Context, limit int64, dst any) error {
	lr := io.LimitReader(c.Request().Body, limit)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func registerUser(svc Service, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := decodeBody(c, userBodyMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		user, err := svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
		if err != nil {
			return writeError(c, err)
		}
		token, err := auth.IssueToken(user)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
	}
}

func loginUser(svc Service, auth Authenticator, throttle Throttle, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, userBodyMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		throttleKey := strings.ToLower(strings.TrimSpace(req.Email)) + "|" + c.RealIP()
		if throttle != nil {
			allowed, err := throttle.Allow(c.Request().Context(), throttleKey)
			if err != nil {
				// A throttle outage must not lock everyone out.
				logger.WithError(err).Warn("login throttle unavailable")
			} else if !allowed {
				return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"})
			}
		}

		user, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeError(c, err)
		}
		if throttle != nil {
			if err := throttle.Reset(c.Request().Context(), throttleKey); err != nil {
				logger.WithError(err).Warn("login throttle reset failed")
			}
		}
		token, err := auth.IssueToken(user)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
	}
}

func getProfile() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, actorFromContext(c))
	}
}

func createTask(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var draft domain.TaskDraft
		if err := decodeBody(c, taskBodyMaxSize, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		task, err := svc.CreateTask(c.Request().Context(), actorFromContext(c), draft)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func listTasks(svc Service, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		filter := domain.TaskFilter{
			Status:     domain.Status(c.QueryParam("status")),
			Priority:   domain.Priority(c.QueryParam("priority")),
			AssignedTo: c.QueryParam("assignedTo"),
		}
		page, pageErr := positiveQueryInt(c, "page", 1)
		limit, limitErr := positiveQueryInt(c, "limit", 0)
		if pageErr != nil || limitErr != nil {
			metrics.SetErrorStage("invalid_pagination")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid pagination parameters"})
			return err
		}

		fetchStart := time.Now()
		list, listErr := svc.ListTasks(ctx, actorFromContext(c), filter, page, limit)
		metrics.ObserveFetch(time.Since(fetchStart))
		if listErr != nil {
			metrics.SetErrorStage("list")
			err = writeError(c, listErr)
			return err
		}
		metrics.SetTasksReturned(len(list.Tasks))
		metrics.SetPage(list.Page, list.Pages)

		if list.Tasks == nil {
			list.Tasks = []domain.Task{}
		}
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, listTasksResponse{
			Tasks: list.Tasks,
			Page:  list.Page,
			Pages: list.Pages,
			Total: list.Total,
		})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func positiveQueryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

func getTask(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := svc.GetTask(c.Request().Context(), actorFromContext(c), c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func updateTask(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch domain.TaskPatch
		if err := decodeBody(c, taskBodyMaxSize, &patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		task, err := svc.UpdateTask(c.Request().Context(), actorFromContext(c), c.Param("id"), patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.DeleteTask(c.Request().Context(), actorFromContext(c), c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func uploadAttachment(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, err)
		}
		defer f.Close()

		att, err := svc.UploadAttachment(c.Request().Context(), actorFromContext(c), c.Param("id"), service.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, att)
	}
}

func deleteAttachment(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := svc.DeleteAttachment(c.Request().Context(), actorFromContext(c), c.Param("id"), c.Param("attachmentId"))
		if err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
