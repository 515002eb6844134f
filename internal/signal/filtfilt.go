package signal

// filtfilt applies an IIR filter forward then backward so the output has no
// phase shift relative to the input. The signal is extended at both ends by
// an odd reflection of length padlen = min(3*ntaps, len-2), floored at 1,
// and the filter is primed with its step-response steady state at each pass
// to suppress edge transients.
func filtfilt(b, a, x []float64) []float64 {
	ntaps := len(b)
	if len(a) > ntaps {
		ntaps = len(a)
	}
	padlen := 3 * ntaps
	if padlen > len(x)-2 {
		padlen = len(x) - 2
	}
	if padlen < 1 {
		padlen = 1
	}

	n := len(x)
	ext := make([]float64, n+2*padlen)
	for i := 0; i < padlen; i++ {
		ext[i] = 2*x[0] - x[padlen-i]
	}
	copy(ext[padlen:], x)
	for i := 0; i < padlen; i++ {
		ext[padlen+n+i] = 2*x[n-1] - x[n-2-i]
	}

	zi := lfilterZi(b, a)

	y := lfilterWithInit(b, a, ext, zi, ext[0])
	reverse(y)
	y = lfilterWithInit(b, a, y, zi, y[0])
	reverse(y)

	return y[padlen : padlen+n]
}

// lfilterWithInit runs a direct form II transposed IIR filter with initial
// state zi scaled by x0.
func lfilterWithInit(b, a, x, zi []float64, x0 float64) []float64 {
	n := len(b)
	z := make([]float64, n-1)
	for i := range z {
		z[i] = zi[i] * x0
	}

	y := make([]float64, len(x))
	for i, xi := range x {
		yi := b[0]*xi + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xi + z[j+1] - a[j+1]*yi
		}
		z[n-2] = b[n-1]*xi - a[n-1]*yi
		y[i] = yi
	}
	return y
}

// lfilterZi computes the filter's internal state for a unit-step steady
// state: zi such that feeding a constant input produces a constant output
// immediately. Solves (I - C^T) zi = B where C is the companion matrix of a.
func lfilterZi(b, a []float64) []float64 {
	n := len(a)
	m := n - 1

	// (I - C^T)[i][j] = delta(i,j) - C[j][i] with C[0][j] = -a[j+1] and
	// C[i][i-1] = 1.
	mat := make([][]float64, m)
	for i := 0; i < m; i++ {
		mat[i] = make([]float64, m)
		for j := 0; j < m; j++ {
			c := 0.0
			if j == 0 {
				c = -a[i+1]
			} else if j == i+1 {
				c = 1
			}
			if i == j {
				mat[i][j] = 1 - c
			} else {
				mat[i][j] = -c
			}
		}
	}

	rhs := make([]float64, m)
	for i := 0; i < m; i++ {
		rhs[i] = b[i+1] - a[i+1]*b[0]
	}

	return solveLinear(mat, rhs)
}

// solveLinear solves mat*x = rhs by Gaussian elimination with partial
// pivoting. mat and rhs are modified in place.
func solveLinear(mat [][]float64, rhs []float64) []float64 {
	m := len(rhs)
	for col := 0; col < m; col++ {
		pivot := col
		for r := col + 1; r < m; r++ {
			if abs(mat[r][col]) > abs(mat[pivot][col]) {
				pivot = r
			}
		}
		mat[col], mat[pivot] = mat[pivot], mat[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		if mat[col][col] == 0 {
			continue
		}
		for r := col + 1; r < m; r++ {
			f := mat[r][col] / mat[col][col]
			for c := col; c < m; c++ {
				mat[r][c] -= f * mat[col][c]
			}
			rhs[r] -= f * rhs[col]
		}
	}

	x := make([]float64, m)
	for r := m - 1; r >= 0; r-- {
		sum := rhs[r]
		for c := r + 1; c < m; c++ {
			sum -= mat[r][c] * x[c]
		}
		if mat[r][r] != 0 {
			x[r] = sum / mat[r][r]
		}
	}
	return x
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
