package execution

import (
	"sync"

	"github.com/kbukum/rex/ci"
	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/util"
)

// announcements remembers the last value published for each variable so a
// change merged through several levels is masked and published once.
type announcements struct {
	mu   sync.Mutex
	last map[string]string
}

func newAnnouncements() *announcements {
	return &announcements{last: make(map[string]string)}
}

// claim reports whether value is new for key and records it.
func (a *announcements) claim(key, value string) bool {
	if a == nil {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if old, ok := a.last[key]; ok && old == value {
		return false
	}
	a.last[key] = value
	return true
}

// MergeSecrets copies secrets from child into parent that are new or
// changed and exports each as an environment variable on parent. A value
// not yet announced in this run is added to the writer's masker and
// published as a secret CI variable. It returns the keys that changed.
func MergeSecrets(parent *Context, child *collections.StringMap) []string {
	var changed []string
	for key, value := range child.All() {
		if old, ok := parent.Secrets.Get(key); ok && old == value {
			continue
		}
		parent.Secrets.Set(key, value)
		name := util.ScreamingSnake(key)
		parent.Env.Set(name, value)
		// The env projection of a secret is never published in the clear.
		parent.announced.claim("env:"+name, value)
		if parent.announced.claim("secret:"+name, value) {
			if parent.Writer != nil {
				if m := parent.Writer.SecretMasker(); m != nil {
					m.Add(value)
				}
			}
			publish(parent, name, value, true)
		}
		changed = append(changed, key)
	}
	return changed
}

// MergeEnv copies env vars from child into parent that are new or changed
// and publishes each not yet announced as a CI variable. It returns the keys
// that changed.
func MergeEnv(parent *Context, child *collections.StringMap) []string {
	var changed []string
	for key, value := range child.All() {
		if old, ok := parent.Env.Get(key); ok && old == value {
			continue
		}
		parent.Env.Set(key, value)
		if parent.announced.claim("env:"+key, value) {
			publish(parent, key, value, false)
		}
		changed = append(changed, key)
	}
	return changed
}

// Propagate merges the env and secrets a child context gained back into its
// parent and returns the changed keys. Env is merged first so a secret
// changed by the child wins over the stale env projection it inherited.
func Propagate(parent, child *Context) (secrets, env []string) {
	env = MergeEnv(parent, child.Env)
	secrets = MergeSecrets(parent, child.Secrets)
	return secrets, env
}

func publish(c *Context, name, value string, secret bool) {
	if c.Vars == nil {
		return
	}
	if err := c.Vars.SetVar(name, value, ci.VarOptions{Secret: secret}); err != nil && c.Writer != nil {
		c.Writer.Warn("unable to publish variable %s: %v", name, err)
	}
}
