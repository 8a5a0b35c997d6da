package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Danilov210/Trip-Planner/internal/auth"
	"github.com/Danilov210/Trip-Planner/internal/db"
	"github.com/Danilov210/Trip-Planner/internal/metrics"
	"github.com/Danilov210/Trip-Planner/internal/models"
)

// Store is the gateway's slice of the state store.
type Store interface {
	CreateJob(ctx context.Context, job models.Job) error
	GetJob(ctx context.Context, requestID string) (models.Job, error)
	FindCachedPlan(ctx context.Context, userID string, spec models.TripSpec) (json.RawMessage, error)
	CreateUser(ctx context.Context, user models.User) error
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListHistory(ctx context.Context, userID string) ([]models.Trip, error)
}

// Publisher is the producing side of the message broker.
type Publisher interface {
	Publish(ctx context.Context, msg models.JobMessage) error
}

// Archiver retires a done job out-of-band after the client has read
// the result.
type Archiver interface {
	Archive(ctx context.Context, requestID string) error
}

type API struct {
	store    Store
	broker   Publisher
	archiver Archiver
	tokens   *auth.Manager
	log      *slog.Logger
}

func NewAPI(store Store, broker Publisher, archiver Archiver, tokens *auth.Manager) *API {
	return &API{
		store:    store,
		broker:   broker,
		archiver: archiver,
		tokens:   tokens,
		log:      slog.Default(),
	}
}

func (a *API) Router() *gin.Engine {
	router := gin.Default()

	router.POST("/signup", a.Signup)
	router.POST("/login", a.Login)
	router.GET("/status/:request_id", a.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := router.Group("/", auth.Middleware(a.tokens))
	{
		authed.POST("/submit", a.Submit)
		authed.GET("/history", a.History)
		authed.POST("/find_trip", a.FindTrip)
	}
	return router
}

// Submit accepts a trip request. A history match is answered directly
// with the cached plan and produces no job and no broker traffic;
// otherwise a pending request row is written first and the job message
// published after it.
func (a *API) Submit(c *gin.Context) {
	spec, ok := bindTripSpec(c)
	if !ok {
		return
	}
	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	// Dedup before anything else: a hit must not touch the broker.
	cached, err := a.store.FindCachedPlan(c.Request.Context(), user.UserID, spec)
	if err == nil {
		metrics.CacheHitsTotal.Inc()
		c.JSON(http.StatusOK, gin.H{
			"status":  "done",
			"trip":    cached,
			"message": "Trip already exists in your history",
		})
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		a.log.Error("dedup lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to check history"})
		return
	}

	requestID := uuid.New().String()
	payload, err := json.Marshal(spec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to encode request"})
		return
	}

	job := models.Job{
		RequestID: requestID,
		UserID:    user.UserID,
		Status:    models.StatusPending,
		Payload:   payload,
	}
	if err := a.store.CreateJob(c.Request.Context(), job); err != nil {
		a.log.Error("create job failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to save request"})
		return
	}

	msg := models.JobMessage{
		RequestID:     requestID,
		UserID:        user.UserID,
		StartLocation: spec.StartLocation,
		StartDate:     spec.StartDate,
		EndDate:       spec.EndDate,
		Interests:     spec.Interests,
	}
	if err := a.broker.Publish(c.Request.Context(), msg); err != nil {
		// The pending row is already durable; without a publish no
		// worker will ever pick it up. Known gap: no reconciliation.
		a.log.Error("publish failed, job orphaned", "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to publish request"})
		return
	}

	metrics.SubmissionsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"status": "submitted", "request_id": requestID})
}

// Status reports the state of one request. The first poll that sees a
// terminal result schedules archival out-of-band; the response itself
// is the parsed plan document with no envelope.
func (a *API) Status(c *gin.Context) {
	requestID := c.Param("request_id")

	job, err := a.store.GetJob(c.Request.Context(), requestID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Request ID not found"})
		return
	}
	if err != nil {
		a.log.Error("status read failed", "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to read request"})
		return
	}

	view := job.View()
	if view.Kind != models.StatusViewDone {
		c.JSON(http.StatusOK, gin.H{"status": string(job.Status)})
		return
	}

	go func() {
		if err := a.archiver.Archive(context.Background(), requestID); err != nil {
			a.log.Error("archival failed", "request_id", requestID, "error", err)
		}
	}()

	c.Data(http.StatusOK, "application/json", view.Result)
}

// Signup creates an account. Failures are reported generically.
func (a *API) Signup(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "username and password are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not create user"})
		return
	}
	user := models.User{
		UserID:       uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := a.store.CreateUser(c.Request.Context(), user); err != nil {
		// Duplicate username lands here too; the message stays vague.
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "could not create user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "user created"})
}

// Login exchanges form-encoded credentials for a bearer token. Invalid
// username and invalid password produce the same response.
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.store.GetUserByUsername(c.Request.Context(), username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid username or password"})
		return
	}

	token, err := a.tokens.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"access_token": token,
		"token_type":   "bearer",
		"message":      "login successful",
	})
}

// History lists the user's archived trips, most recent first.
func (a *API) History(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		return
	}
	trips, err := a.store.ListHistory(c.Request.Context(), user.UserID)
	if err != nil {
		a.log.Error("history read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": trips})
}

// FindTrip is the dedup lookup exposed directly.
func (a *API) FindTrip(c *gin.Context) {
	spec, ok := bindTripSpec(c)
	if !ok {
		return
	}
	user, ok := a.currentUser(c)
	if !ok {
		return
	}

	cached, err := a.store.FindCachedPlan(c.Request.Context(), user.UserID, spec)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No matching trip found"})
		return
	}
	if err != nil {
		a.log.Error("find trip failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to search history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"raw_plan": cached})
}

// bindTripSpec validates the submission body before any state is
// created.
func bindTripSpec(c *gin.Context) (models.TripSpec, bool) {
	var spec models.TripSpec
	if err := c.ShouldBindJSON(&spec); err != nil ||
		spec.StartLocation == "" || spec.StartDate == "" || spec.EndDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid trip request"})
		return models.TripSpec{}, false
	}
	if spec.Interests == nil {
		spec.Interests = []string{}
	}
	return spec, true
}

// currentUser resolves the authenticated username set by the
// middleware to a user record.
func (a *API) currentUser(c *gin.Context) (models.User, bool) {
	username := c.GetString(auth.UsernameKey)
	user, err := a.store.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "could not validate credentials"})
		return models.User{}, false
	}
	return user, true
}
