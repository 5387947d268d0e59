package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

const (
	probeUp   = "up"
	probeDown = "down"
)

// Probe checks one dependency. A failing critical probe makes the service unhealthy.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

func handleHealth(probes []Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := make(map[string]string, len(probes))

		for _, p := range probes {
			if err := p.Check(r.Context()); err != nil {
				resp[p.Name] = probeDown
				if p.Critical {
					status = http.StatusServiceUnavailable
				}
				continue
			}
			resp[p.Name] = probeUp
		}

		render.Status(r, status)
		render.JSON(w, r, resp)
	}
}
