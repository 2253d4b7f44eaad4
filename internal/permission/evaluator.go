package permission

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/star-supla/internal"
)

// Evaluator answers capability questions from the cached permission set.
// Answers are memoized until the set is replaced.
type Evaluator struct {
	mu     sync.Mutex
	set    PermissionSet
	memo   map[string]Capabilities
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{
		memo:   make(map[string]Capabilities),
		logger: logger,
	}
}

// Replace installs a new permission set and drops memoized answers.
func (e *Evaluator) Replace(set PermissionSet) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.set = set
	e.memo = make(map[string]Capabilities)

	if scoped, ok := set.(Scoped); ok {
		e.warnDuplicates(scoped)
	}
}

func (e *Evaluator) Current() PermissionSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

func (e *Evaluator) IsSuperAdmin() bool {
	_, ok := e.Current().(SuperAdmin)
	return ok
}

func (e *Evaluator) Evaluate(pageName string) Capabilities {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := strings.ToLower(pageName)
	if caps, ok := e.memo[key]; ok {
		return caps
	}

	caps := evaluate(e.set, pageName)
	e.memo[key] = caps
	return caps
}

// Require fails when action is not granted on pageName. The check is
// client side only; the backend remains the authority.
func (e *Evaluator) Require(pageName string, action Action) error {
	if e.Evaluate(pageName).Allows(action) {
		return nil
	}
	return internal.NewForbiddenError(
		fmt.Sprintf("%s permission on page %q is not granted", action, pageName),
		internal.ErrCodePermissionDenied,
	)
}

func evaluate(set PermissionSet, pageName string) Capabilities {
	switch s := set.(type) {
	case SuperAdmin:
		return all
	case Scoped:
		for _, p := range s.Pages {
			if p.PageName != "" && strings.EqualFold(p.PageName, pageName) {
				return project(p)
			}
		}
	}
	return none
}

func (e *Evaluator) warnDuplicates(scoped Scoped) {
	seen := make(map[string]bool, len(scoped.Pages))
	for _, p := range scoped.Pages {
		key := strings.ToLower(p.PageName)
		if key == "" {
			continue
		}
		if seen[key] {
			e.logger.Warn("duplicate page name in permission set, first entry wins", "page_name", p.PageName, "page_id", p.PageID)
			continue
		}
		seen[key] = true
	}
}
