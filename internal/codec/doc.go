// Package codec wraps the encoder backends that produce WebP and AVIF
// derivatives. The ffmpeg backend shells out to an external binary and
// covers both formats; the native backend encodes WebP in-process via
// libwebp bindings and needs no external tooling. Which backend serves
// a format is decided by the capability probe, not here.
package codec
