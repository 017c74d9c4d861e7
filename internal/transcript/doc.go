// Package transcript renders speech-to-text token streams as WebVTT subtitle
// tracks, applying phrase dictionary corrections and confidence styling.
package transcript
