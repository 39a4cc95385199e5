package markdowncmd

// FeatureGates lets the host switch the import command off without
// unregistering it. A nil ImportEnabled means enabled.
type FeatureGates struct {
	ImportEnabled func() bool
}

func (g FeatureGates) importEnabled() bool {
	return g.ImportEnabled == nil || g.ImportEnabled()
}
