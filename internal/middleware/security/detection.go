package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"spendlens/internal/log"
)

const maxURLLength = 2048

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		".git", ".ssh", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "union select", "eval(",
	}
	scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}
	blockedMethod = map[string]bool{"TRACE": true, "TRACK": true, "DEBUG": true, "CONNECT": true}
)

// Detector resolves client addresses behind trusted proxies and flags
// requests that look like scans.
type Detector struct {
	trustedProxies []*net.IPNet
	flagged        atomic.Int64
}

// NewDetector trusts loopback and private networks to set forwarding headers.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("parse trusted proxy %q: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// ClientIP returns the caller address. Forwarding headers are honoured only
// when the direct peer is a trusted proxy.
func (d *Detector) ClientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}
	ip := net.ParseIP(direct)
	if ip == nil || !d.trusted(ip) {
		return direct
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return direct
}

func (d *Detector) trusted(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Inspect returns a short reason when r looks like a scan, or "".
func (d *Detector) Inspect(r *http.Request) string {
	reason := inspect(r)
	if reason != "" {
		d.flagged.Add(1)
	}
	return reason
}

func inspect(r *http.Request) string {
	if blockedMethod[r.Method] {
		return "method"
	}
	if len(r.URL.String()) > maxURLLength {
		return "url_length"
	}
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(target, p) {
			return "pattern"
		}
	}
	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return "user_agent"
		}
	}
	return ""
}

// Flagged reports how many requests Inspect has flagged.
func (d *Detector) Flagged() int64 {
	return d.flagged.Load()
}

// Middleware logs flagged requests and rejects the ones using debugging
// methods. Other flagged requests continue; the routes reject them anyway.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := d.Inspect(r)
		if reason != "" {
			log.FromContext(r.Context()).Warn("suspicious request",
				"reason", reason,
				log.FieldClientIP, d.ClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		if reason == "method" {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
