package testutil

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Identity is a fake identity service served in-process by fiber. Tests mount
// routes on App and hand Client() to the code under test.
type Identity struct {
	App *fiber.App

	mu     sync.Mutex
	calls  map[string]int
	bodies map[string][]map[string]any
}

// NewIdentity builds an empty fake that records every request.
func NewIdentity() *Identity {
	id := &Identity{
		App:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		calls:  make(map[string]int),
		bodies: make(map[string][]map[string]any),
	}
	id.App.Use(func(c *fiber.Ctx) error {
		var body map[string]any
		if len(c.Body()) > 0 {
			_ = json.Unmarshal(c.Body(), &body)
		}
		path := utils.CopyString(c.Path())
		id.mu.Lock()
		id.calls[path]++
		id.bodies[path] = append(id.bodies[path], body)
		id.mu.Unlock()
		return c.Next()
	})
	return id
}

// Client returns an http.Client whose requests are served by App.
func (i *Identity) Client() *http.Client {
	return &http.Client{Transport: FiberTransport{App: i.App}}
}

// Calls reports how many requests hit path.
func (i *Identity) Calls(path string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls[path]
}

// TotalCalls reports every recorded request.
func (i *Identity) TotalCalls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	total := 0
	for _, n := range i.calls {
		total += n
	}
	return total
}

// LastBody returns the most recent JSON body posted to path.
func (i *Identity) LastBody(path string) map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	bodies := i.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

// FiberTransport is an http.RoundTripper that serves requests with app.Test.
type FiberTransport struct {
	App *fiber.App
}

func (t FiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.App.Test(req.Clone(req.Context()), -1)
}
