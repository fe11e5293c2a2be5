// Package featureflags evaluates runtime toggles read from FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// IndexCache serves the global feed through the page cache when enabled.
const IndexCache = "index_cache"

// Defaults apply to flags absent from the configured list.
var Defaults = map[string]string{
	IndexCache: "on",
}

// Manager evaluates feature flags defined in a key=value list, e.g.
// "index_cache=on,new_profile=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated flag list on top of Defaults.
// Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	out := lo.Assign(Defaults)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether a flag is on for a user. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout. Anonymous users
// (userID 0) only see fully rolled out percentages.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the configured flags.
func (m *Manager) Raw() map[string]string {
	return lo.Assign(m.flags)
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	return lo.MapValues(m.flags, func(_ string, name string) bool {
		return m.Enabled(name, userID)
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
