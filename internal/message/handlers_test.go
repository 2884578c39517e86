package message

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/mznsh11/Blex/internal/model"
)

func actorMiddleware(username string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("username", username)
		return c.Next()
	}
}

func newTestApp(t *testing.T, actor string) *fiber.App {
	t.Helper()
	svc, _ := newTestService(t, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/messages"), svc, actorMiddleware(actor))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestSendMessageHandler(t *testing.T) {
	app := newTestApp(t, "alice")

	resp := postJSON(t, app, "/messages/", SendRequest{To: "acme", Content: "hey"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send status: %d", resp.StatusCode)
	}
	var sent model.Message
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.Sender != "alice" || sent.Receiver != "acme" {
		t.Fatalf("unexpected message: %+v", sent)
	}

	resp = postJSON(t, app, "/messages/", SendRequest{To: "ghost", Content: "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, "/messages/", SendRequest{To: "acme"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestInboxHandler(t *testing.T) {
	svc, _ := newTestService(t, nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/messages"), svc, actorMiddleware("acme"))

	if _, err := svc.SendMessage(context.Background(), "alice", SendRequest{To: "acme", Content: "hey"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/messages/inbox", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("inbox status: %v", err)
	}
	var inbox []model.Message
	if err := json.NewDecoder(resp.Body).Decode(&inbox); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Content != "hey" {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}

	req = httptest.NewRequest(http.MethodGet, "/messages/sent", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("sent status: %v", err)
	}
	var sent []model.Message
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sent) != 0 {
		t.Fatalf("expected empty sent list, got %d", len(sent))
	}
}
