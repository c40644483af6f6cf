package middlewares

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger instances for different log levels
var (
	AuditLogger = log.New(os.Stderr, "AUDIT: ", log.LstdFlags)
	DebugLogger = log.New(os.Stderr, "DEBUG: ", log.LstdFlags)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.LstdFlags)
)

// InitLoggers points the audit, debug and error loggers at rotating files
// under logDir. Until it is called they write to stderr.
func InitLoggers(logDir string) error {
	for _, level := range []string{"audit", "debug", "error"} {
		if err := os.MkdirAll(filepath.Join(logDir, level), os.ModePerm); err != nil {
			return err
		}
	}

	AuditLogger = log.New(rotatingFile(logDir, "audit"), "AUDIT: ", log.LstdFlags)
	DebugLogger = log.New(rotatingFile(logDir, "debug"), "DEBUG: ", log.LstdFlags)
	ErrorLogger = log.New(rotatingFile(logDir, "error"), "ERROR: ", log.LstdFlags)
	return nil
}

func rotatingFile(logDir, level string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, level, level+".log"),
		MaxSize:    1,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// LoggingMiddleware logs audit information for every request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamp := time.Now().Format(time.RFC3339)
		AuditLogger.Printf("Time: %s | Method: %s | URL: %s | User-Agent: %s | IP: %s",
			timestamp, r.Method, r.URL.String(), r.UserAgent(), getIPAddress(r))

		next.ServeHTTP(w, r)
	})
}

var trustedProxies atomic.Pointer[[]netip.Prefix]

// SetTrustedProxies lists the proxies, as IPs or CIDRs, whose X-Forwarded-For
// header is believed. With none configured the header is ignored and the
// client is the peer address.
func SetTrustedProxies(entries []string) error {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	trustedProxies.Store(&prefixes)
	return nil
}

func isTrustedProxy(ip string) bool {
	prefixes := trustedProxies.Load()
	if prefixes == nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range *prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// getIPAddress returns the client address. X-Forwarded-For is only read when
// the peer is a trusted proxy, walking from the nearest hop back to the first
// untrusted one.
func getIPAddress(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrustedProxy(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrustedProxy(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}
