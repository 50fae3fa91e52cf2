package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestOnConfigReloadedSwapsConfigAndBroadcasts(t *testing.T) {
	s := newTestServer(t)
	sub := s.eventBroker.Subscribe()
	defer s.eventBroker.Unsubscribe(sub)

	newCfg := &config.Config{Sources: map[string]config.Source{"h2": {Endpoint: "http://y"}}}
	s.onConfigReloaded(newCfg)

	require.Same(t, newCfg, s.GetConfig())

	select {
	case evt := <-sub:
		require.Equal(t, EventConfigReloaded, evt.Type)
	default:
		t.Fatal("expected a broadcast event")
	}
}

func TestRoutesRegisterExpectedPaths(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/ready", "/capabilities", "/resources"} {
		_, pattern := s.router.Handler(httptest.NewRequest(http.MethodGet, path, nil))
		require.NotEmpty(t, pattern)
	}
}
