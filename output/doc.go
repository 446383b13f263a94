// Package output recovers a content object from a model reply and
// normalizes it for a platform.
//
// Recovery is an ordered pipeline: [ExtractJSON] tries candidate substrings
// against cumulative [Repairs], and [ParseLabeled] reads "Label: value"
// text when no object parses. [Normalize] then applies the platform
// contract and the caller's fallback content.
package output
