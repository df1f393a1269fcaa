package linear

import "github.com/chewxy/math32"

// Decompose splits the affine matrix m into translation,
// rotation and scale such that m = T ⋅ R ⋅ S.
// Shear and perspective terms are discarded. The rotation
// is re-normalized to absorb floating-point drift.
func Decompose(m *M4) (t V3, r Q, s V3) {
	t = m.Translation()
	c0 := V3{m[0][0], m[0][1], m[0][2]}
	c1 := V3{m[1][0], m[1][1], m[1][2]}
	c2 := V3{m[2][0], m[2][1], m[2][2]}
	s = V3{c0.Len(), c1.Len(), c2.Len()}
	var x V3
	x.Cross(&c1, &c2)
	if c0.Dot(&x) < 0 {
		s[0] = -s[0]
	}
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		r = IdentQ()
		return
	}
	c0.Scale(1/s[0], &c0)
	c1.Scale(1/s[1], &c1)
	c2.Scale(1/s[2], &c2)
	r = fromBasis(&c0, &c1, &c2)
	r.Norm(&r)
	return
}

// fromBasis converts the orthonormal basis given by the
// columns c0, c1 and c2 into a quaternion.
func fromBasis(c0, c1, c2 *V3) (q Q) {
	// mRC is row R, column C.
	m00, m11, m22 := c0[0], c1[1], c2[2]
	m01, m02 := c1[0], c2[0]
	m10, m12 := c0[1], c2[1]
	m20, m21 := c0[2], c1[2]
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		k := 0.5 / math32.Sqrt(tr+1)
		q.R = 0.25 / k
		q.V = V3{(m21 - m12) * k, (m02 - m20) * k, (m10 - m01) * k}
	case m00 > m11 && m00 > m22:
		k := 2 * math32.Sqrt(1+m00-m11-m22)
		q.R = (m21 - m12) / k
		q.V = V3{0.25 * k, (m01 + m10) / k, (m02 + m20) / k}
	case m11 > m22:
		k := 2 * math32.Sqrt(1+m11-m00-m22)
		q.R = (m02 - m20) / k
		q.V = V3{(m01 + m10) / k, 0.25 * k, (m12 + m21) / k}
	default:
		k := 2 * math32.Sqrt(1+m22-m00-m11)
		q.R = (m10 - m01) / k
		q.V = V3{(m02 + m20) / k, (m12 + m21) / k, 0.25 * k}
	}
	return
}
