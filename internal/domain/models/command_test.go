package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{in: "/dates", wantType: CommandDates},
		{in: "  /Summary 2025-05-01 ", wantType: CommandSummary, wantArgs: []string{"2025-05-01"}},
		{in: "export 2025-05-01 2025-05-08", wantType: CommandExport, wantArgs: []string{"2025-05-01", "2025-05-08"}},
		{in: "/HELP", wantType: CommandHelp},
		{in: "/eggs 12", wantType: CommandUnknown, wantArgs: []string{"12"}},
		{in: "   ", wantType: CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd := ParseCommand(tt.in)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.in, cmd.Raw)
		})
	}
}

func TestInboundMessage_Body(t *testing.T) {
	assert.Equal(t, "/dates", InboundMessage{Text: &TextContent{Body: "/dates"}}.Body())
	assert.Equal(t, "/export", InboundMessage{Interactive: &InteractiveContent{ButtonReply: &ReplyOption{ID: "/export"}}}.Body())
	assert.Equal(t, "/help", InboundMessage{Interactive: &InteractiveContent{ListReply: &ReplyOption{ID: "/help"}}}.Body())
	assert.Empty(t, InboundMessage{Type: "image"}.Body())
}
