// Command contentgen serves the content generation API and offers one-shot
// generate and models subcommands. Run "contentgen help" for usage.
package main
