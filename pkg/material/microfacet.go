package material

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// minAlpha keeps near-mirror surfaces away from a degenerate GGX distribution
const minAlpha = 1e-3

// Microfacet is a Cook-Torrance style material: a GGX specular lobe with
// Schlick Fresnel and Smith masking, layered over a diffuse lobe that fades
// out as the surface becomes metallic.
type Microfacet struct {
	Albedo    core.Vec3 // Diffuse color, and specular tint for metals
	F0        core.Vec3 // Reflectance at normal incidence for the dielectric part
	Roughness float64   // Perceptual roughness in [0, 1]
	Metallic  float64   // 0 = dielectric, 1 = conductor
}

// NewMicrofacet creates a microfacet material, clamping roughness and metallic to [0, 1]
func NewMicrofacet(albedo, f0 core.Vec3, roughness, metallic float64) *Microfacet {
	return &Microfacet{
		Albedo:    albedo,
		F0:        f0,
		Roughness: math.Max(0, math.Min(1, roughness)),
		Metallic:  math.Max(0, math.Min(1, metallic)),
	}
}

func (m *Microfacet) alpha() float64 {
	return math.Max(m.Roughness*m.Roughness, minAlpha)
}

// specularProbability is the chance of sampling the GGX lobe instead of the diffuse one
func (m *Microfacet) specularProbability() float64 {
	return 0.5 + 0.5*m.Metallic
}

// Sample picks a lobe, then either a GGX half vector reflected about wo or a cosine-weighted direction
func (m *Microfacet) Sample(wo, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	u := sampler.Get3D()
	if u.X < m.specularProbability() {
		h := sampleGGX(normal, m.alpha(), core.NewVec2(u.Y, u.Z))
		return reflect(wo.Negate(), h)
	}
	return core.SampleCosineHemisphere(normal, core.NewVec2(u.Y, u.Z))
}

// Eval returns the sum of the specular and diffuse lobes
func (m *Microfacet) Eval(wi, wo, normal core.Vec3) core.Vec3 {
	cosI := wi.Dot(normal)
	cosO := wo.Dot(normal)
	if cosI <= 0 || cosO <= 0 {
		return core.Vec3{}
	}

	h := wi.Add(wo).Normalize()
	if h.IsZero() {
		return core.Vec3{}
	}

	alpha := m.alpha()
	f0 := m.F0.Lerp(m.Albedo, m.Metallic)
	fresnel := fresnelSchlick(f0, math.Max(0, wo.Dot(h)))
	d := ggxD(h.Dot(normal), alpha)
	g := smithG1(cosI, alpha) * smithG1(cosO, alpha)

	specular := fresnel.Multiply(d * g / (4 * cosI * cosO))
	kd := core.NewVec3(1, 1, 1).Subtract(fresnel).Multiply(1 - m.Metallic)
	diffuse := kd.MultiplyVec(m.Albedo).Multiply(1.0 / math.Pi)

	return specular.Add(diffuse)
}

// PDF mixes the GGX reflection density with the cosine density using the lobe selection probability
func (m *Microfacet) PDF(wi, wo, normal core.Vec3) float64 {
	cosI := wi.Dot(normal)
	if cosI <= 0 {
		return 0
	}

	p := m.specularProbability()
	diffusePDF := cosI / math.Pi

	specularPDF := 0.0
	h := wi.Add(wo).Normalize()
	if voh := wo.Dot(h); voh > 0 {
		cosH := h.Dot(normal)
		specularPDF = ggxD(cosH, m.alpha()) * cosH / (4 * voh)
	}

	return p*specularPDF + (1-p)*diffusePDF
}

// Emission is zero; microfacet surfaces don't glow
func (m *Microfacet) Emission() core.Vec3 {
	return core.Vec3{}
}

// sampleGGX draws a half vector proportional to D(h)·cosθh
func sampleGGX(normal core.Vec3, alpha float64, sample core.Vec2) core.Vec3 {
	a2 := alpha * alpha
	phi := 2 * math.Pi * sample.X
	cos2Theta := (1 - sample.Y) / (1 + (a2-1)*sample.Y)
	cosTheta := math.Sqrt(cos2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cos2Theta))

	local := core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
	return core.ToWorld(local, normal)
}

// ggxD is the Trowbridge-Reitz normal distribution
func ggxD(cosH, alpha float64) float64 {
	if cosH <= 0 {
		return 0
	}
	a2 := alpha * alpha
	d := cosH*cosH*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// smithG1 is the separable Smith masking term for GGX
func smithG1(cosV, alpha float64) float64 {
	if cosV <= 0 {
		return 0
	}
	a2 := alpha * alpha
	return 2 * cosV / (cosV + math.Sqrt(a2+(1-a2)*cosV*cosV))
}

func fresnelSchlick(f0 core.Vec3, cosTheta float64) core.Vec3 {
	weight := math.Pow(1-cosTheta, 5)
	return f0.Add(core.NewVec3(1, 1, 1).Subtract(f0).Multiply(weight))
}
