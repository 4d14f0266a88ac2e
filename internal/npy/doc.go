// Package npy implements the numpy .npy single-array binary file format.
//
// The .npy format is numpy's native on-disk representation for one array:
//
//	Format Structure:
//	  [1 byte:  Magic 0x93]
//	  [5 bytes: "NUMPY" ASCII]
//	  [1 byte:  Major version = 0x01]
//	  [1 byte:  Minor version = 0x00]
//	  [2 bytes: Header dict length (uint16 LE), including trailing '\n']
//	  [Header dict: ASCII python literal, space-padded so that
//	   10 + dict_length is a multiple of 16, ending in '\n']
//	  [Raw element bytes, row-major unless fortran_order is true]
//
// The header dict looks like:
//
//	{'descr': '<f4', 'fortran_order': False, 'shape': (2, 3), }
//
// The package supports:
//   - Data types float32, float64, int32, int64, uint8, uint16, bool
//     (descr codes f4, f8, i4, i8, u1, u2, b1)
//   - Arbitrary shapes including scalars () and empty axes (0,)
//   - Little-endian payloads only; big-endian files are rejected
//
// Compressed .npz archives, structured/object dtypes, and memory-mapped
// loading are out of scope.
//
// Example usage:
//
//	// Save an array
//	data := []float32{1, 2, 3, 4, 5, 6}
//	err := npy.Save("x.npy", asBytes(data), tensor.Shape{2, 3}, tensor.Float32)
//
//	// Load it back
//	arr, err := npy.Load("x.npy")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Release()
//	values := npy.View[float32](arr)
package npy
