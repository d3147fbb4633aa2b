package surface

// EffectBundle описывает эффекты, срабатывающие при шаге по поверхности.
// Пустая строка означает отсутствие эффекта данного вида.
type EffectBundle struct {
	Sound    string `json:"sound,omitempty" yaml:"sound,omitempty"`
	Decal    string `json:"decal,omitempty" yaml:"decal,omitempty"`
	Particle string `json:"particle,omitempty" yaml:"particle,omitempty"`
}

// HasSound сообщает, задан ли звук
func (b EffectBundle) HasSound() bool { return b.Sound != "" }

// HasDecal сообщает, задан ли материал декали
func (b EffectBundle) HasDecal() bool { return b.Decal != "" }

// HasParticle сообщает, задан ли шаблон частиц
func (b EffectBundle) HasParticle() bool { return b.Particle != "" }

// IsEmpty возвращает true, если ни один эффект не задан
func (b EffectBundle) IsEmpty() bool {
	return !b.HasSound() && !b.HasDecal() && !b.HasParticle()
}

// Entry связывает тип поверхности с набором эффектов
type Entry struct {
	Kind   Kind         `json:"type" yaml:"type"`
	Bundle EffectBundle `json:"bundle" yaml:"bundle"`
}
