package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/khmercorpus/bitext-extractor/internal/pdf"
)

// CollectURLs interactively gathers newline-delimited PDF URLs from r.
// A blank line (or "exit") on the first prompt ends the session; a blank
// line after at least one entry starts processing. URLs that fail
// validation are rejected with a message and re-prompted, never fatal.
func CollectURLs(r io.Reader) []string {
	reader := bufio.NewReader(r)

	Info("Enter PDF URLs one per line.")
	Info("Press Enter on a blank line to start processing.")
	Info("Press Enter without typing anything at the start to exit.")
	Info("")

	var urls []string

	first, ok := readLine(reader, " > ")
	if !ok || first == "" {
		Info("No input received. Exiting.")
		return nil
	}
	if strings.EqualFold(first, "exit") {
		Info("Exiting.")
		return nil
	}
	if err := pdf.ValidateURL(first); err != nil {
		Warn("Invalid URL: must end with .pdf")
	} else {
		urls = append(urls, first)
	}

	for {
		line, ok := readLine(reader, "Enter another URL (or press Enter to process): ")
		if !ok {
			break
		}
		if strings.EqualFold(line, "exit") {
			Info("Exiting.")
			return nil
		}
		if line == "" {
			break
		}
		if err := pdf.ValidateURL(line); err != nil {
			Warn("Invalid URL: must end with .pdf")
			continue
		}
		urls = append(urls, line)
	}

	return urls
}

// readLine prompts and reads one trimmed line. ok is false at EOF.
func readLine(reader *bufio.Reader, prompt string) (string, bool) {
	fmt.Fprint(os.Stdout, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
