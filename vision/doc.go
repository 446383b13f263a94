// Package vision decides how image references reach a generation backend.
//
// Route picks one of three modes (off, text_fallback, multimodal) from the
// provider, the resolved model and the presence of images. The capability
// predicates are shared with model discovery so both agree on which models
// accept images.
package vision
