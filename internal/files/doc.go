// Package files locates dataset files on disk.
//
// Discovery lists the supported dataset files in a directory and resolves a
// directory argument to its most recently modified dataset, so
//
//	path, err := files.NewDiscovery("").ResolveDataset("data/raw")
//
// yields data/raw/<newest>.csv. Paths that are not directories pass through
// unchanged and are validated when the dataset is loaded.
package files
