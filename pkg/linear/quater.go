package linear

import "github.com/chewxy/math32"

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// IdentQ returns the identity rotation.
func IdentQ() Q { return Q{R: 1} }

// Mul sets q to contain l ⋅ r.
// q may alias l or r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Rotate sets q to contain a rotation of angle radians
// about axis.
func (q *Q) Rotate(angle float32, axis *V3) {
	var n V3
	n.Norm(axis)
	s, c := math32.Sin(angle/2), math32.Cos(angle/2)
	q.V.Scale(s, &n)
	q.R = c
}

// Len returns the norm of q.
func (q *Q) Len() float32 {
	return math32.Sqrt(q.V.Dot(&q.V) + q.R*q.R)
}

// Norm sets q to contain p normalized.
// A zero p produces the identity.
func (q *Q) Norm(p *Q) {
	l := p.Len()
	if l == 0 {
		*q = IdentQ()
		return
	}
	q.V.Scale(1/l, &p.V)
	q.R = p.R / l
}

// Euler sets q to contain the rotation given by the Euler
// angles x, y and z, in radians.
func (q *Q) Euler(x, y, z float32) {
	cx, sx := math32.Cos(x/2), math32.Sin(x/2)
	cy, sy := math32.Cos(y/2), math32.Sin(y/2)
	cz, sz := math32.Cos(z/2), math32.Sin(z/2)
	q.R = cx*cy*cz + sx*sy*sz
	q.V = V3{
		sx*cy*cz - cx*sy*sz,
		cx*sy*cz + sx*cy*sz,
		cx*cy*sz - sx*sy*cz,
	}
}

// Angles returns the Euler angles of q, in radians.
// It is the inverse of Euler for pitch in (-π/2, π/2).
func (q *Q) Angles() V3 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	py := 2 * (y*z + w*x)
	px := w*w - x*x - y*y + z*z
	var pitch float32
	if math32.Abs(py) < 1e-7 && math32.Abs(px) < 1e-7 {
		pitch = 2 * math32.Atan2(x, w)
	} else {
		pitch = math32.Atan2(py, px)
	}
	sy := -2 * (x*z - w*y)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	yaw := math32.Asin(sy)
	roll := math32.Atan2(2*(x*y+w*z), w*w+x*x-y*y-z*z)
	return V3{pitch, yaw, roll}
}

// Approx reports whether q and p describe the same rotation
// within tol, accounting for the double cover (q and -q).
func (q *Q) Approx(p *Q, tol float32) bool {
	d := q.V.Dot(&p.V) + q.R*p.R
	return math32.Abs(math32.Abs(d)-1) <= tol
}
