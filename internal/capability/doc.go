// Package capability interrogates the host once and reports which codec
// backends can produce which formats, plus the runtime ceilings the
// batch guards enforce. Detection is cached after the first call; the
// preference order for a format is always ffmpeg first, native second.
package capability
