package ports

// PreviewQueue accepts tracks whose preview clip should be measured in the background.
type PreviewQueue interface {
	Enqueue(trackID, previewURL string)
}
