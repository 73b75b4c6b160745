package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// DecodeFlags control what is read, how it is decoded and how the decoded
// text is written out.

func DecodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "input",
			Usage: "File to decode, - for standard input",
			Value: "-",
		},
		cli.BoolFlag{
			Name:  "follow",
			Usage: "Keep decoding data appended to --input until interrupted",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Decoding preset (utf8|utf16|utf16le|utf16be|utf32|utf32le|utf32be)",
			Value: "utf8",
		},
		cli.StringFlag{
			Name:  "encoding",
			Usage: "Input encoding (utf8|utf16|utf32), overrides the preset",
		},
		cli.StringFlag{
			Name:  "endian",
			Usage: "Byte order assumed without a byte-order mark (le|be)",
		},
		cli.BoolTFlag{
			Name:  "bom",
			Usage: "Let a leading byte-order mark select the byte order",
		},
		cli.IntFlag{
			Name:  "chunk",
			Usage: "Largest number of bytes read from the input at once",
			Value: 4096,
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "Output format (text|codepoints|hex|lines or an encoding such as utf16le)",
			Value: "text",
		},
		cli.BoolFlag{
			Name:  "replace",
			Usage: "Substitute U+FFFD for malformed input instead of failing",
		},
	}
}
