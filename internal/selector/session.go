package selector

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	errorNotATerminalMessage = "interactive selection requires a terminal"
	errorRawModeFormat       = "cannot enter raw terminal mode: %w"
	errorReadInputFormat     = "cannot read terminal input: %w"

	sessionTitle          = "Select files to include"
	sessionHelpLine       = "space toggle · a all · n none · j/k move · enter confirm · q cancel"
	acceptedSummaryFormat = "%d of %d files accepted"
	candidateLineFormat   = "%s %s (%s)"
	acceptedMarker        = "[x]"
	rejectedMarker        = "[ ]"

	fallbackTerminalRows = 24
	reservedFrameRows    = 5
	inputBufferLength    = 16

	hideCursorSequence  = "\x1b[?25l"
	showCursorSequence  = "\x1b[?25h"
	clearScreenSequence = "\x1b[H\x1b[2J"
	frameLineBreak      = "\r\n"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorRowStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("15")).Bold(true)
	rejectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
)

// Run reviews candidates on the controlling terminal and returns the records
// the user confirmed together with the final session state. The frame goes to
// stderr so redirected output never captures the interface. A cancelled
// session returns no records.
func Run(candidates []types.FileRecord) ([]types.FileRecord, State, error) {
	return runOn(os.Stdin, os.Stderr, candidates)
}

func runOn(input *os.File, output *os.File, candidates []types.FileRecord) ([]types.FileRecord, State, error) {
	inputDescriptor := int(input.Fd())
	if !term.IsTerminal(inputDescriptor) {
		return nil, StateCancelled, errors.New(errorNotATerminalMessage)
	}
	previousTerminalState, rawModeError := term.MakeRaw(inputDescriptor)
	if rawModeError != nil {
		return nil, StateCancelled, fmt.Errorf(errorRawModeFormat, rawModeError)
	}
	defer func() {
		_ = term.Restore(inputDescriptor, previousTerminalState)
	}()

	fmt.Fprint(output, hideCursorSequence)
	defer fmt.Fprint(output, showCursorSequence)

	model := NewModel(candidates)
	inputBuffer := make([]byte, inputBufferLength)
	for model.State() == StateBrowsing {
		fmt.Fprint(output, renderFrame(model, terminalRows(inputDescriptor)))
		bytesRead, readError := input.Read(inputBuffer)
		if readError != nil {
			return nil, StateCancelled, fmt.Errorf(errorReadInputFormat, readError)
		}
		if event, recognized := DecodeKey(inputBuffer[:bytesRead]); recognized {
			model.Apply(event)
		}
	}
	fmt.Fprint(output, clearScreenSequence)

	return model.Accepted(), model.State(), nil
}

// renderFrame draws the whole interface for one event cycle. The candidate
// list scrolls so the cursor row always stays visible.
func renderFrame(model *Model, terminalRowCount int) string {
	visibleRows := terminalRowCount - reservedFrameRows
	if visibleRows < 1 {
		visibleRows = 1
	}
	firstVisible := 0
	if model.CursorIndex() >= visibleRows {
		firstVisible = model.CursorIndex() - visibleRows + 1
	}
	lastVisible := firstVisible + visibleRows
	if lastVisible > model.CandidateCount() {
		lastVisible = model.CandidateCount()
	}

	var frame strings.Builder
	frame.WriteString(clearScreenSequence)
	frame.WriteString(titleStyle.Render(sessionTitle))
	frame.WriteString(frameLineBreak)
	frame.WriteString(frameLineBreak)
	for candidateIndex := firstVisible; candidateIndex < lastVisible; candidateIndex++ {
		frame.WriteString(renderCandidateRow(model, candidateIndex))
		frame.WriteString(frameLineBreak)
	}
	frame.WriteString(frameLineBreak)
	frame.WriteString(summaryStyle.Render(fmt.Sprintf(acceptedSummaryFormat, model.AcceptedCount(), model.CandidateCount())))
	frame.WriteString(frameLineBreak)
	frame.WriteString(helpStyle.Render(sessionHelpLine))
	frame.WriteString(frameLineBreak)
	return frame.String()
}

func renderCandidateRow(model *Model, candidateIndex int) string {
	marker := rejectedMarker
	if model.IsAccepted(candidateIndex) {
		marker = acceptedMarker
	}
	candidate := model.Candidate(candidateIndex)
	row := fmt.Sprintf(candidateLineFormat, marker, candidate.RelativePath, utils.FormatFileSize(candidate.SizeBytes))
	switch {
	case candidateIndex == model.CursorIndex():
		return cursorRowStyle.Render(row)
	case !model.IsAccepted(candidateIndex):
		return rejectedStyle.Render(row)
	default:
		return row
	}
}

func terminalRows(descriptor int) int {
	_, rows, sizeError := term.GetSize(descriptor)
	if sizeError != nil || rows <= 0 {
		return fallbackTerminalRows
	}
	return rows
}
