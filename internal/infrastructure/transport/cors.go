package transport

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/handlers"

	"promptcraft/app/config"
)

const (
	corsWildcard       = "*"
	corsRequestMethod  = "Access-Control-Request-Method"
	corsRequestHeaders = "Access-Control-Request-Headers"
	corsOriginHeader   = "Origin"
	corsVaryHeader     = "Vary"
)

type originMode int

const (
	originList originMode = iota
	originAny
	originEcho
)

// corsPolicy adapts a CORSConfig to gorilla's CORS handler. gorilla matches
// methods and headers literally, so a "*" entry is resolved per preflight by
// allowing exactly what the browser asked for.
type corsPolicy struct {
	cfg        config.CORSConfig
	anyMethod  bool
	anyHeader  bool
	originMode originMode
	next       http.Handler
	static     http.Handler
}

func corsHandler(cfg config.CORSConfig, next http.Handler) http.Handler {
	p := &corsPolicy{
		cfg:        cfg,
		anyMethod:  slices.Contains(cfg.AllowedMethods, corsWildcard),
		anyHeader:  slices.Contains(cfg.AllowedHeaders, corsWildcard),
		originMode: originList,
		next:       next,
	}
	if slices.Contains(cfg.AllowedOrigins, corsWildcard) {
		// "*" may not be combined with credentials, so the caller's origin is
		// reflected instead
		p.originMode = originAny
		if cfg.AllowCredentials {
			p.originMode = originEcho
		}
	}
	p.static = p.build(cfg.AllowedMethods, cfg.AllowedHeaders)
	return p
}

func (p *corsPolicy) build(methods, headers []string) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedMethods(methods),
		handlers.AllowedHeaders(headers),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	}
	if p.originMode == originEcho {
		opts = append(opts, handlers.AllowedOriginValidator(func(string) bool { return true }))
	} else {
		opts = append(opts, handlers.AllowedOrigins(p.cfg.AllowedOrigins))
	}
	if p.cfg.AllowCredentials {
		opts = append(opts, handlers.AllowCredentials())
	}
	return handlers.CORS(opts...)(p.next)
}

func (p *corsPolicy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.originMode == originEcho && r.Header.Get(corsOriginHeader) != "" {
		w.Header().Add(corsVaryHeader, corsOriginHeader)
	}

	if r.Method != http.MethodOptions || (!p.anyMethod && !p.anyHeader) {
		p.static.ServeHTTP(w, r)
		return
	}

	methods, headers := p.cfg.AllowedMethods, p.cfg.AllowedHeaders
	if p.anyMethod {
		methods = append(slices.Clone(methods), r.Header.Get(corsRequestMethod))
	}
	if p.anyHeader {
		headers = append(slices.Clone(headers), strings.Split(r.Header.Get(corsRequestHeaders), ",")...)
	}
	p.build(methods, headers).ServeHTTP(w, r)
}
