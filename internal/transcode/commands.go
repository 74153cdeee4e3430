package transcode

// Options carries advisory per-job conversion knobs.
type Options struct {
	// Quality in (0, 1]. The transcode templates pin their own rate
	// factors, so this is currently honored only by the raster path.
	Quality float64
	// AudioOnly strips the video stream regardless of target format.
	AudioOnly bool
}

// pipelineKind tags how many engine passes a target format needs.
type pipelineKind int

const (
	singlePass pipelineKind = iota
	// paletted is the two-pass animated GIF pipeline: generate a color
	// palette first, then re-filter the input applying it.
	paletted
)

// template is the fixed argument set for one target format. Command
// construction is a pure function of the target tag.
type template struct {
	args     []string
	pipeline pipelineKind
}

// gifFilter is the frame-rate/scale filter shared by both GIF passes. Both
// passes must filter identically or the palette will not match the frames.
const gifFilter = "fps=15,scale=480:-1:flags=lanczos"

// templates maps each supported target format to its command template.
//
// Audio-only targets strip the video stream and select a format-appropriate
// audio codec/bitrate. mp4/mov use x264 at a fixed quality factor with AAC
// audio and relocate container metadata for progressive playback. webm pins
// royalty-free codecs at constant quality. avi carries the legacy xvid
// fourCC for old-player compatibility.
var templates = map[string]template{
	"mp3":  {args: []string{"-vn", "-c:a", "libmp3lame", "-b:a", "192k"}},
	"wav":  {args: []string{"-vn", "-c:a", "pcm_s16le"}},
	"ogg":  {args: []string{"-vn", "-c:a", "libvorbis", "-q:a", "5"}},
	"mp4":  {args: []string{"-c:v", "libx264", "-crf", "23", "-preset", "fast", "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart"}},
	"mov":  {args: []string{"-c:v", "libx264", "-crf", "23", "-preset", "fast", "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart"}},
	"webm": {args: []string{"-c:v", "libvpx-vp9", "-crf", "32", "-b:v", "0", "-c:a", "libopus"}},
	"avi":  {args: []string{"-c:v", "mpeg4", "-vtag", "xvid", "-q:v", "5", "-c:a", "libmp3lame", "-b:a", "192k"}},
	"gif":  {pipeline: paletted},
}

// Supported reports whether the transcoding pipeline can produce the given
// target format tag.
func Supported(to string) bool {
	_, ok := templates[to]
	return ok
}

// Targets returns the supported target format tags.
func Targets() []string {
	targets := make([]string, 0, len(templates))
	for tag := range templates {
		targets = append(targets, tag)
	}
	return targets
}

// buildArgs assembles the single-pass command for one job.
func buildArgs(in, out string, tpl template, opts Options) []string {
	args := []string{"-hide_banner", "-y", "-i", in}
	if opts.AudioOnly && !hasDisableVideo(tpl.args) {
		args = append(args, "-vn")
	}
	args = append(args, tpl.args...)
	return append(args, out)
}

// buildPaletteGenArgs assembles the first GIF pass, producing a 256-color
// palette from the filtered input.
func buildPaletteGenArgs(in, palette string) []string {
	return []string{"-hide_banner", "-y", "-i", in, "-vf", gifFilter + ",palettegen", palette}
}

// buildPaletteUseArgs assembles the second GIF pass, re-filtering the input
// and applying the staged palette. -loop 0 makes the output loop forever.
func buildPaletteUseArgs(in, palette, out string) []string {
	return []string{
		"-hide_banner", "-y",
		"-i", in,
		"-i", palette,
		"-filter_complex", gifFilter + "[x];[x][1:v]paletteuse",
		"-loop", "0",
		out,
	}
}

func hasDisableVideo(args []string) bool {
	for _, a := range args {
		if a == "-vn" {
			return true
		}
	}
	return false
}
