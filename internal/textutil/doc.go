// Package textutil provides text helpers shared by the track pipeline.
//
// The primary use cases are:
//   - Sanitizing entity names into object-key safe basenames
//   - Capitalizing raw identifiers (face collection ExternalImageId values,
//     meta file names) into display names
//   - Extracting the numeric shard index embedded in a result key
package textutil
