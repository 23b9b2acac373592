// Package main implements the contact-receive Lambda handler.
// This Lambda serves POST /contact behind API Gateway: it validates the
// submission, persists it to DynamoDB, and sends a best-effort operator
// notification through SES. Persistence is the commit point; a notification
// failure never changes the caller's outcome.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda/xrayconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel"

	"github.com/ryosuz/receive-contact/internal/contact"
	"github.com/ryosuz/receive-contact/internal/notify"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// MessageStore defines the interface for persisting contact messages.
type MessageStore interface {
	PutMessage(ctx context.Context, msg *contact.ContactMessage) error
}

// Notifier defines the interface for sending the operator notification.
type Notifier interface {
	Notify(ctx context.Context, msg *contact.ContactMessage) error
}

// handlerConfig carries the startup configuration the handler needs. It is an
// explicit struct rather than ambient env lookups so tests can build handlers
// directly.
type handlerConfig struct {
	AllowOrigin   string
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
}

// handler orchestrates one contact submission end to end.
type handler struct {
	store    MessageStore
	notifier Notifier
	cfg      handlerConfig
}

// newHandler creates a new handler.
func newHandler(store MessageStore, notifier Notifier, cfg handlerConfig) *handler {
	return &handler{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// acceptedResponse is the success body; the generated id doubles as the
// caller's receipt token.
type acceptedResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error  string               `json:"error"`
	Fields []contact.FieldError `json:"fields,omitempty"`
}

// handle processes one API Gateway proxy request.
func (h *handler) handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	tracer := otel.Tracer("contact-receive")
	ctx, span := tracer.Start(ctx, "ReceiveContactHandler")
	defer span.End()

	// Preflight is normally answered by API Gateway; answer it here too for
	// direct invocations.
	if request.HTTPMethod == http.MethodOptions {
		return h.respond(http.StatusNoContent, nil), nil
	}

	sub, err := contact.ParseSubmission(request.Body, request.IsBase64Encoded, request.Headers)
	if err != nil {
		logger.WarnContext(ctx, "Failed to decode submission payload",
			slog.String("error", err.Error()),
		)
		return h.respond(http.StatusBadRequest, errorResponse{Error: "malformed request body"}), nil
	}

	if err := sub.Validate(); err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			logger.InfoContext(ctx, "Rejected invalid submission",
				slog.String("error", verr.Error()),
			)
			return h.respond(http.StatusBadRequest, errorResponse{
				Error:  "validation failed",
				Fields: verr.Fields,
			}), nil
		}
		return h.respond(http.StatusBadRequest, errorResponse{Error: "validation failed"}), nil
	}

	msg := contact.NewContactMessage(sub, contact.NewIdentity())

	storeCtx, cancelStore := context.WithTimeout(ctx, h.cfg.StoreTimeout)
	defer cancelStore()
	if err := h.store.PutMessage(storeCtx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to persist contact message",
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)
		return h.respond(http.StatusInternalServerError, errorResponse{Error: "internal server error"}), nil
	}

	// The message is durable from here on. The notification is best-effort:
	// it runs detached from the transport's cancellation, bounded by its own
	// timeout, and its failure is operator-visible only.
	notifyCtx, cancelNotify := context.WithTimeout(context.WithoutCancel(ctx), h.cfg.NotifyTimeout)
	defer cancelNotify()
	if err := h.notifier.Notify(notifyCtx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to send notification",
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)
	}

	logger.InfoContext(ctx, "Accepted contact message",
		slog.String("message_id", msg.ID),
	)

	return h.respond(http.StatusOK, acceptedResponse{ID: msg.ID}), nil
}

// respond builds a JSON response with the CORS headers every response carries.
func (h *handler) respond(status int, body any) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  h.cfg.AllowOrigin,
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "OPTIONS, POST",
	}

	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
	}
	if body != nil {
		// Marshalling the response structs cannot fail.
		encoded, _ := json.Marshal(body)
		resp.Body = string(encoded)
	}
	return resp
}

// envDuration parses a duration env var, falling back to def when the var is
// unset or unparsable.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("Ignoring unparsable duration",
			slog.String("var", key),
			slog.String("value", v),
		)
		return def
	}
	return d
}

func main() {
	ctx := context.Background()

	tp, err := xrayconfig.NewTracerProvider(ctx)
	if err != nil {
		logger.Error("FATAL: Failed to initialize tracer provider", slog.String("error", err.Error()))
		panic(err)
	}
	otel.SetTracerProvider(tp)

	tableName := os.Getenv("TABLE_NAME")
	fromEmail := os.Getenv("FROM_EMAIL")
	toEmail := os.Getenv("TO_EMAIL")
	region := os.Getenv("REGION")
	allowOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Error("FATAL: Failed to load AWS config", slog.String("error", err.Error()))
		panic(err)
	}

	// Instrument AWS SDK clients with OTel tracing
	otelaws.AppendMiddlewares(&cfg.APIOptions)

	store := contact.NewDynamoDBRepository(dynamodb.NewFromConfig(cfg), tableName)
	notifier := notify.NewSESNotifier(ses.NewFromConfig(cfg), fromEmail, toEmail)

	h := newHandler(store, notifier, handlerConfig{
		AllowOrigin:   allowOrigin,
		StoreTimeout:  envDuration("STORE_TIMEOUT", 3*time.Second),
		NotifyTimeout: envDuration("NOTIFY_TIMEOUT", 5*time.Second),
	})
	lambda.Start(otellambda.InstrumentHandler(h.handle, xrayconfig.WithRecommendedOptions(tp)...))
}
