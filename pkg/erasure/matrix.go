package erasure

// buildMatrix constructs the systematic (k+m)xk encoder matrix M used
// by Encode/Decode. It starts from the raw (k+m)xk Vandermonde matrix
// V[r][c] = (r+1)^c, then left-multiplies by the inverse of V's top kxk
// submatrix: M = V * Vtop^-1. This is the standard systematic-RS
// transform — it preserves the MDS property (every kxk submatrix of M
// remains invertible, since Vtop^-1 is invertible and submatrices of a
// Vandermonde matrix are themselves invertible for distinct evaluation
// points) while forcing M's first k rows to the identity matrix, so
// shards 0..k-1 come out of Encode as the raw data columns and only
// shards k..k+m-1 carry parity.
func buildMatrix(k, m int) [][]byte {
	v := vandermonde(k+m, k)
	vTop := v[:k]
	vTopInv := invert(vTop)
	return matMul(v, vTopInv)
}

// vandermonde returns the rowsxcols matrix V[r][c] = (r+1)^c.
func vandermonde(rows, cols int) [][]byte {
	m := make([][]byte, rows)
	for r := 0; r < rows; r++ {
		x := byte(r + 1)
		m[r] = make([]byte, cols)
		v := byte(1)
		for c := 0; c < cols; c++ {
			m[r][c] = v
			v = gfMul(v, x)
		}
	}
	return m
}

// matMul multiplies an rxk matrix by a kxk matrix over GF(2^8).
func matMul(a, b [][]byte) [][]byte {
	rows, k := len(a), len(b)
	out := make([][]byte, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]byte, k)
		for c := 0; c < k; c++ {
			var acc byte
			for i := 0; i < k; i++ {
				acc ^= gfMul(a[r][i], b[i][c])
			}
			out[r][c] = acc
		}
	}
	return out
}

// invert computes the inverse of a square matrix over GF(2^8) via
// Gauss-Jordan elimination on [mat | I]. mat is not square-checked by
// the caller's contract (it's always the top kxk Vandermonde submatrix,
// which is invertible for k distinct non-zero evaluation points); a
// zero pivot here would indicate a construction bug, so it panics
// rather than threading an error through matrix setup.
func invert(mat [][]byte) [][]byte {
	n := len(mat)
	aug := make([][]byte, n)
	for i := range mat {
		row := make([]byte, 2*n)
		copy(row, mat[i])
		row[n+i] = 1
		aug[i] = row
	}

	for i := 0; i < n; i++ {
		if aug[i][i] == 0 {
			swapped := false
			for r := i + 1; r < n; r++ {
				if aug[r][i] != 0 {
					aug[i], aug[r] = aug[r], aug[i]
					swapped = true
					break
				}
			}
			if !swapped {
				panic("erasure: singular Vandermonde submatrix during inversion")
			}
		}

		inv := gfInv(aug[i][i])
		for c := 0; c < 2*n; c++ {
			aug[i][c] = gfMul(aug[i][c], inv)
		}

		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			factor := aug[r][i]
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug[r][c] ^= gfMul(factor, aug[i][c])
			}
		}
	}

	out := make([][]byte, n)
	for i := range out {
		out[i] = append([]byte(nil), aug[i][n:]...)
	}
	return out
}

// solveLinearSystem solves mat*x = vec over GF(2^8) via Gaussian
// elimination with partial pivoting by row swap (the systematic
// encoder matrix's rows are drawn from an MDS code, so any k of them
// form a non-singular system; a swap failure indicates a genuine
// construction bug, reported as ErrDecodeFailed rather than panicking
// since it runs on every decode call, not just matrix setup). mat and
// vec are consumed (not preserved).
func solveLinearSystem(mat [][]byte, vec []byte) ([]byte, error) {
	n := len(mat)

	for i := 0; i < n; i++ {
		if mat[i][i] == 0 {
			swapped := false
			for r := i + 1; r < n; r++ {
				if mat[r][i] != 0 {
					mat[i], mat[r] = mat[r], mat[i]
					vec[i], vec[r] = vec[r], vec[i]
					swapped = true
					break
				}
			}
			if !swapped {
				return nil, ErrDecodeFailed
			}
		}

		inv := gfInv(mat[i][i])
		for j := i; j < n; j++ {
			mat[i][j] = gfMul(mat[i][j], inv)
		}
		vec[i] = gfMul(vec[i], inv)

		for r := i + 1; r < n; r++ {
			factor := mat[r][i]
			if factor == 0 {
				continue
			}
			for c := i; c < n; c++ {
				mat[r][c] ^= gfMul(factor, mat[i][c])
			}
			vec[r] ^= gfMul(factor, vec[i])
		}
	}

	solution := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		acc := vec[i]
		for j := i + 1; j < n; j++ {
			acc ^= gfMul(mat[i][j], solution[j])
		}
		solution[i] = acc
	}
	return solution, nil
}
