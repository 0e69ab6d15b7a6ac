package spec

// ConfigItem is an entry of a feature group or config body: a *FeatureConfig or a *FeatureGroup.
type ConfigItem interface {
	isConfigItem()
}

// FeatureDependency is an explicit dependency of a feature on another feature.
type FeatureDependency struct {
	ID FeatureID
	// Include adds the target to the config when it is not declared there.
	Include bool
}

// FeatureConfig declares a feature in a config or feature group.
type FeatureConfig struct {
	Spec   SpecID
	Params map[string]string
	Deps   []FeatureDependency
}

func (*FeatureConfig) isConfigItem() {}

// NewFeatureConfig returns a feature config of the given spec with the given params.
func NewFeatureConfig(spec SpecID, params map[string]string) *FeatureConfig {
	if params == nil {
		params = make(map[string]string)
	}

	return &FeatureConfig{Spec: spec, Params: params}
}

// IncludedFeature re-includes a feature by id. When Params is not nil it also customizes the
// feature, and declares it if the group body does not.
type IncludedFeature struct {
	ID     FeatureID
	Params map[string]string
}

// FeatureGroupSupport is the body shared by feature groups and config models: filtering rules,
// ordered items and package dependencies.
type FeatureGroupSupport struct {
	InheritFeatures  bool
	IncludedSpecs    []SpecID
	ExcludedSpecs    []SpecID
	IncludedFeatures []*IncludedFeature
	ExcludedFeatures []FeatureID
	Items            []ConfigItem
	PackageDeps      []PackageDependency
}

// NewFeatureGroupSupport returns a body inheriting all features.
func NewFeatureGroupSupport() FeatureGroupSupport {
	return FeatureGroupSupport{InheritFeatures: true}
}

// AddFeature appends a feature item.
func (fgs *FeatureGroupSupport) AddFeature(feature *FeatureConfig) {
	fgs.Items = append(fgs.Items, feature)
}

// AddGroup appends a nested feature group item.
func (fgs *FeatureGroupSupport) AddGroup(group *FeatureGroup) {
	fgs.Items = append(fgs.Items, group)
}

// HasFilters reports whether any include or exclude rule is set.
func (fgs *FeatureGroupSupport) HasFilters() bool {
	return !fgs.InheritFeatures || len(fgs.IncludedSpecs) > 0 || len(fgs.ExcludedSpecs) > 0 ||
		len(fgs.IncludedFeatures) > 0 || len(fgs.ExcludedFeatures) > 0
}

// FeatureGroup is a named reusable collection of features. The same type references a group from a
// body, where its filters customize the referenced group.
type FeatureGroup struct {
	Name string
	// Origin names the feature-pack dependency declaring the group.
	Origin string
	FeatureGroupSupport
}

func (*FeatureGroup) isConfigItem() {}

// NewFeatureGroup returns an empty group inheriting all features.
func NewFeatureGroup(name string) *FeatureGroup {
	return &FeatureGroup{Name: name, FeatureGroupSupport: NewFeatureGroupSupport()}
}

// ConfigModel is a root composition of feature groups and features producing one config.
type ConfigModel struct {
	ID         ConfigID
	Props      map[string]string
	ConfigDeps map[string]ConfigID
	FeatureGroupSupport
}

// NewConfigModel returns an empty config model.
func NewConfigModel(model, name string) *ConfigModel {
	return &ConfigModel{
		ID:                  ConfigID{Model: model, Name: name},
		Props:               make(map[string]string),
		ConfigDeps:          make(map[string]ConfigID),
		FeatureGroupSupport: NewFeatureGroupSupport(),
	}
}
