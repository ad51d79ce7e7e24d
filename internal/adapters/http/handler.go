package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/ArielDRighi/tarot/internal/app"
	"github.com/ArielDRighi/tarot/internal/domain"
)

const (
	maxQuestionLength = 500
	defaultDrawCount  = 3
	maxDrawCount      = 10

	unavailableMessage = "interpretation service unavailable, try again later"
)

type Handler struct {
	tarot       *app.TarotService
	readings    *app.ReadingService
	interpreter *app.InterpretationService
	logger      *slog.Logger
}

func NewHandler(tarot *app.TarotService, readings *app.ReadingService, interpreter *app.InterpretationService, logger *slog.Logger) *Handler {
	return &Handler{
		tarot:       tarot,
		readings:    readings,
		interpreter: interpreter,
		logger:      logger,
	}
}

// Routes holds the middleware that guards route groups.
type Routes struct {
	Auth      echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Metrics   http.Handler
}

func (h *Handler) Register(e *echo.Echo, r Routes) {
	e.GET("/healthz", h.Healthz)
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}

	auth := orPassThrough(r.Auth)
	limit := orPassThrough(r.RateLimit)
	user := RequireUser()

	v1 := e.Group("/v1")
	v1.GET("/decks", h.ListDecks)
	v1.GET("/decks/:id", h.GetDeck)
	v1.GET("/decks/:id/cards", h.ListDeckCards)
	v1.GET("/cards", h.ListCards)
	v1.GET("/cards/:id", h.GetCard)
	v1.GET("/spreads", h.ListSpreads)
	v1.GET("/spreads/:id", h.GetSpread)
	v1.GET("/cards/random", h.RandomCards)
	v1.GET("/share/:shareId", h.GetSharedReading)

	v1.POST("/spreads", h.CreateSpread, auth, user)
	v1.POST("/readings", h.CreateReading, auth, user)
	v1.GET("/readings", h.ListReadings, auth, user)
	v1.GET("/readings/:id", h.GetReading, auth, user)
	v1.GET("/readings/:id/interpretations", h.ListInterpretations, auth, user)
	v1.POST("/readings/:id/share", h.ShareReading, auth, user)
	v1.POST("/readings/:id/regenerate", h.RegenerateInterpretation, auth, user, limit)
	v1.POST("/interpretations", h.GenerateInterpretation, auth, user, limit)
}

func orPassThrough(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw != nil {
		return mw
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}

func (h *Handler) Healthz(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Interpretation: "available"}
	if !h.interpreter.Available() {
		resp.Interpretation = "unavailable"
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListDecks(c echo.Context) error {
	decks, err := h.tarot.ListDecks(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, decks)
}

func (h *Handler) GetDeck(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	deck, err := h.tarot.GetDeck(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, deck)
}

func (h *Handler) ListDeckCards(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	cards, err := h.tarot.ListCards(c.Request().Context(), &id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *Handler) ListCards(c echo.Context) error {
	deckID, err := queryDeckID(c)
	if err != nil {
		return h.mapError(c, err)
	}
	cards, err := h.tarot.ListCards(c.Request().Context(), deckID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *Handler) GetCard(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	card, err := h.tarot.GetCard(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

func (h *Handler) ListSpreads(c echo.Context) error {
	spreads, err := h.tarot.ListSpreads(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, spreads)
}

func (h *Handler) GetSpread(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	spread, err := h.tarot.GetSpread(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, spread)
}

func (h *Handler) CreateSpread(c echo.Context) error {
	var req CreateSpreadRequest
	if err := c.Bind(&req); err != nil {
		return h.mapError(c, errInvalidBody)
	}
	cardCount := req.CardCount
	if cardCount == 0 {
		cardCount = len(req.Positions)
	}
	spread, err := h.tarot.CreateSpread(c.Request().Context(), *requesterFrom(c), domain.Spread{
		Name:        req.Name,
		Description: req.Description,
		CardCount:   cardCount,
		Positions:   req.Positions,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, spread)
}

func (h *Handler) RandomCards(c echo.Context) error {
	count := defaultDrawCount
	if raw := c.QueryParam("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDrawCount {
			return h.mapError(c, fmt.Errorf("%w: count must be an integer between 1 and %d", domain.ErrInvalidRequest, maxDrawCount))
		}
		count = parsed
	}

	deckID, err := queryDeckID(c)
	if err != nil {
		return h.mapError(c, err)
	}

	reversed := true
	if raw := c.QueryParam("reversed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return h.mapError(c, fmt.Errorf("%w: reversed must be a boolean", domain.ErrInvalidRequest))
		}
		reversed = parsed
	}

	cards, err := h.tarot.SelectRandomCards(c.Request().Context(), count, deckID, reversed)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *Handler) CreateReading(c echo.Context) error {
	var req CreateReadingRequest
	if err := c.Bind(&req); err != nil {
		return h.mapError(c, errInvalidBody)
	}
	if err := checkQuestion(req.Question); err != nil {
		return h.mapError(c, err)
	}

	generate := true
	if req.GenerateInterpretation != nil {
		generate = *req.GenerateInterpretation
	}

	reading, err := h.readings.CreateReading(c.Request().Context(), requesterFrom(c).UserID, app.CreateReadingRequest{
		Question:               req.Question,
		DeckID:                 req.DeckID,
		SpreadID:               req.SpreadID,
		CardIDs:                req.CardIDs,
		CardPositions:          req.CardPositions,
		GenerateInterpretation: generate,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, reading)
}

func (h *Handler) ListReadings(c echo.Context) error {
	readings, err := h.readings.ListReadings(c.Request().Context(), requesterFrom(c).UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, readings)
}

func (h *Handler) GetReading(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	reading, err := h.readings.FindReading(c.Request().Context(), id, requesterFrom(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, reading)
}

func (h *Handler) ListInterpretations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	list, err := h.readings.ListInterpretations(c.Request().Context(), id, requesterFrom(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toInterpretationRecords(list))
}

func (h *Handler) RegenerateInterpretation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	text, err := h.readings.RegenerateInterpretation(c.Request().Context(), id, requesterFrom(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, InterpretationResponse{Interpretation: text})
}

func (h *Handler) ShareReading(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.mapError(c, err)
	}
	link, err := h.readings.ShareReading(c.Request().Context(), id, requesterFrom(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *Handler) GetSharedReading(c echo.Context) error {
	reading, err := h.readings.FindSharedReading(c.Request().Context(), c.Param("shareId"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSharedReading(reading))
}

func (h *Handler) GenerateInterpretation(c echo.Context) error {
	var req GenerateInterpretationRequest
	if err := c.Bind(&req); err != nil {
		return h.mapError(c, errInvalidBody)
	}
	if err := checkQuestion(req.Question); err != nil {
		return h.mapError(c, err)
	}
	text, err := h.readings.GenerateStandalone(c.Request().Context(), req.Cards, req.Question)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, InterpretationResponse{Interpretation: text})
}

var errInvalidBody = fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest)

func checkQuestion(q string) error {
	if utf8.RuneCountInString(q) > maxQuestionLength {
		return fmt.Errorf("%w: question must be at most %d characters", domain.ErrInvalidRequest, maxQuestionLength)
	}
	return nil
}

// queryDeckID parses the optional deckId query parameter.
func queryDeckID(c echo.Context) (*uint, error) {
	raw := c.QueryParam("deckId")
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: deckId must be a positive integer", domain.ErrInvalidRequest)
	}
	id := uint(parsed)
	return &id, nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidRequest, name)
	}
	return uint(id), nil
}

func (h *Handler) mapError(c echo.Context, err error) error {
	reqID := requestID(c)
	ctx := c.Request().Context()

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.Is(err, domain.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.Is(err, domain.ErrServiceUnavailable):
		h.logger.WarnContext(ctx, "interpretation unavailable", "request_id", reqID, "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: unavailableMessage, RequestID: reqID})
	default:
		h.logger.ErrorContext(ctx, "internal error", "request_id", reqID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", RequestID: reqID})
	}
}
