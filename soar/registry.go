package soar

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry holds the known playbooks. Iteration order is registration
// order, which makes dispatch deterministic.
type Registry struct {
	playbooks      map[string]Playbook
	order          []string
	alertPlaybooks map[string]AlertPlaybook
	alertOrder     []string
	mu             sync.RWMutex
	logger         *zap.SugaredLogger
}

// NewRegistry creates an empty playbook registry
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{
		playbooks:      make(map[string]Playbook),
		alertPlaybooks: make(map[string]AlertPlaybook),
		logger:         logger,
	}
}

// Register adds a case playbook. Re-registering a name is an error.
func (r *Registry) Register(pb Playbook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := pb.Name()
	if name == "" {
		return fmt.Errorf("playbook has an empty name")
	}
	if _, exists := r.playbooks[name]; exists {
		return fmt.Errorf("playbook %s already registered", name)
	}
	r.playbooks[name] = pb
	r.order = append(r.order, name)
	r.logger.Infof("Registered playbook: %s", name)
	return nil
}

// RegisterAlertPlaybook adds an alert playbook
func (r *Registry) RegisterAlertPlaybook(pb AlertPlaybook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := pb.Name()
	if name == "" {
		return fmt.Errorf("alert playbook has an empty name")
	}
	if _, exists := r.alertPlaybooks[name]; exists {
		return fmt.Errorf("alert playbook %s already registered", name)
	}
	r.alertPlaybooks[name] = pb
	r.alertOrder = append(r.alertOrder, name)
	r.logger.Infof("Registered alert playbook: %s", name)
	return nil
}

// Get returns a case playbook by name
func (r *Registry) Get(name string) (Playbook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pb, ok := r.playbooks[name]
	return pb, ok
}

// GetAlertPlaybook returns an alert playbook by name
func (r *Registry) GetAlertPlaybook(name string) (AlertPlaybook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pb, ok := r.alertPlaybooks[name]
	return pb, ok
}

// Names returns the case playbook names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AlertPlaybookNames returns alert playbook names in registration order
func (r *Registry) AlertPlaybookNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.alertOrder))
	copy(out, r.alertOrder)
	return out
}
