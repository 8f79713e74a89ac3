package dto

// Stats models the output of the stats --json subcommand. Which fields are
// populated depends on the requested mode.
type Stats struct {
	TotalSize              int64   `json:"total_size"`
	TotalUncompressedSize  int64   `json:"total_uncompressed_size,omitempty"`
	CompressionRatio       float64 `json:"compression_ratio,omitempty"`
	CompressionSpaceSaving float64 `json:"compression_space_saving,omitempty"`
	TotalFileCount         int64   `json:"total_file_count"`
	TotalBlobCount         int64   `json:"total_blob_count,omitempty"`
	SnapshotsCount         int     `json:"snapshots_count"`
}
