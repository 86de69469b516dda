package engine

// kingBonus is the extra weight of a crowned piece.
const kingBonus = 0.5

// Evaluate scores the position from Light's point of view: material
// difference plus half a point per king difference.
func (p *Position) Evaluate() float64 {
	material := float64(p.remaining[Light] - p.remaining[Dark])
	crowns := float64(p.kings[Light] - p.kings[Dark])
	return material + kingBonus*crowns
}
