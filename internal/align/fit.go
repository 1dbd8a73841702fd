// Package align estimates rigid and affine transforms from point
// correspondences. It is used to snap a template onto reference points
// picked on the detector image.
package align

import (
	"fmt"
	"math"

	"xrd-template/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// FitRigid computes the best rigid transform (rotation + translation, no
// scale) mapping src onto dst in the least-squares sense, and reports the
// rotation angle in radians.
func FitRigid(src, dst []geometry.Point2D) (geometry.AffineTransform, float64, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, 0, fmt.Errorf("align: point count mismatch: %d vs %d", len(src), len(dst))
	}
	if len(src) < 2 {
		return geometry.AffineTransform{}, 0, fmt.Errorf("align: need at least 2 points, got %d", len(src))
	}

	n := float64(len(src))

	var srcCx, srcCy, dstCx, dstCy float64
	for i := range src {
		srcCx += src[i].X
		srcCy += src[i].Y
		dstCx += dst[i].X
		dstCy += dst[i].Y
	}
	srcCx /= n
	srcCy /= n
	dstCx /= n
	dstCy /= n

	// Rotation from the summed cross/dot products of the centered pairs.
	var dotSum, crossSum float64
	for i := range src {
		sx, sy := src[i].X-srcCx, src[i].Y-srcCy
		dx, dy := dst[i].X-dstCx, dst[i].Y-dstCy
		dotSum += sx*dx + sy*dy
		crossSum += sx*dy - sy*dx
	}
	if dotSum == 0 && crossSum == 0 {
		return geometry.AffineTransform{}, 0, fmt.Errorf("align: degenerate point set")
	}

	theta := math.Atan2(crossSum, dotSum)
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	// t = dstCentroid - R * srcCentroid
	tx := dstCx - (cosT*srcCx - sinT*srcCy)
	ty := dstCy - (sinT*srcCx + cosT*srcCy)

	return geometry.AffineTransform{
		A: cosT, B: -sinT, TX: tx,
		C: sinT, D: cosT, TY: ty,
	}, theta, nil
}

// FitAffine computes the full six-parameter affine transform mapping src
// onto dst using QR least squares.
func FitAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	if len(src) != len(dst) {
		return geometry.AffineTransform{}, fmt.Errorf("align: point count mismatch: %d vs %d", len(src), len(dst))
	}
	n := len(src)
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("align: need at least 3 points, got %d", n)
	}

	// Overdetermined system: [x', y'] = [a, b, tx; c, d, ty] * [x, y, 1]
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("align: solve failed: %w", err)
	}

	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// MeanResidual returns the mean distance between transformed src points and
// their dst counterparts, used to report registration quality.
func MeanResidual(src, dst []geometry.Point2D, t geometry.AffineTransform) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	for i := range src {
		total += t.Apply(src[i]).Distance(dst[i])
	}
	return total / float64(len(src))
}
