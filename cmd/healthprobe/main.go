// healthprobe is a lean sidecar that answers load-balancer health checks
// for a chatstore instance. It serves the same handler over net/http or
// fasthttp, selected by flag, and optionally pings the upstream /readyz.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"chatstore/pkg/httpx"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	engine := flag.String("engine", "fasthttp", "serving engine: fasthttp or nethttp")
	upstream := flag.String("upstream", "", "optional chatstore base URL to probe, e.g. http://127.0.0.1:8080")
	ver := flag.String("version", "dev", "version string to return")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}

	h := func(w httpx.ResponseWriter, r *httpx.Request) {
		switch r.Path {
		case "/health", "/healthz":
			_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": *ver})
		case "/readyz":
			if *upstream == "" {
				_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
				return
			}
			resp, err := client.Get(*upstream + "/readyz")
			if err != nil {
				_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "upstream unreachable"})
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				_ = httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "upstream not ready"})
				return
			}
			_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	fmt.Printf("healthprobe (%s) listening on %s\n", *engine, *addr)
	switch *engine {
	case "nethttp":
		srv := &http.Server{Addr: *addr, Handler: httpx.NetHTTPAdapter(h), ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
		if err := srv.ListenAndServe(); err != nil {
			fmt.Printf("nethttp server exit: %v\n", err)
		}
	default:
		srv := &fasthttp.Server{
			Handler:            httpx.FastHTTPAdapter(h),
			Name:               "chatstore-healthprobe",
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       5 * time.Second,
			MaxRequestBodySize: 1 << 20,
		}
		if err := srv.ListenAndServe(*addr); err != nil {
			fmt.Printf("fasthttp server exit: %v\n", err)
		}
	}
}
