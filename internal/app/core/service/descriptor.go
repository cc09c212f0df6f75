package service

// Layer describes a service's placement within the marketplace engine.
type Layer string

const (
	// LayerWorkflow covers services that drive the project/milestone
	// lifecycle against the adapter.
	LayerWorkflow Layer = "workflow"
	// LayerRead covers services that only aggregate and reshape reads.
	LayerRead Layer = "read"
)

// Descriptor advertises a service's placement and capabilities. It is
// optional and does not change runtime behavior, but lets the composition
// root log a consistent inventory of what is wired.
type Descriptor struct {
	Name         string
	Layer        Layer
	Capabilities []string
}

// WithCapabilities returns a copy of the descriptor with additional
// capabilities appended.
func (d Descriptor) WithCapabilities(caps ...string) Descriptor {
	if len(caps) == 0 {
		return d
	}
	combined := make([]string, 0, len(d.Capabilities)+len(caps))
	combined = append(combined, d.Capabilities...)
	combined = append(combined, caps...)
	d.Capabilities = combined
	return d
}
