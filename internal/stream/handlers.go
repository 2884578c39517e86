package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:username", websocket.New(func(c *websocket.Conn) {
		username := c.Params("username")
		client := hub.Register(username)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// Unregister closes Send, so the writer drains and exits even when
		// the peer disconnected without a write ever failing.
		hub.Unregister(client)
		<-done
	}))
}
