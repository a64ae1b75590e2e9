package atcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	tests := []struct {
		name    string
		parser  Parser
		payload string
		want    any
		wantErr bool
	}{
		{"cfun minimal", ParseFunctionLevel, "0", FunctionMinimal, false},
		{"cfun full", ParseFunctionLevel, "1", FunctionFull, false},
		{"cfun disabled with reset", ParseFunctionLevel, "4,0", FunctionDisabled, false},
		{"cfun bad", ParseFunctionLevel, "7", nil, true},
		{"cfun empty", ParseFunctionLevel, "", nil, true},
		{"cpin ready", ParseSIMStatus, "READY", SIMReady, false},
		{"cpin pin", ParseSIMStatus, "SIM PIN", SIMPIN, false},
		{"cpin puk", ParseSIMStatus, "SIM PUK", SIMPUK, false},
		{"cpin other", ParseSIMStatus, "PH-SIM PIN", nil, true},
		{"dtmf digit", ParseDTMFTone, "5", DTMFTone('5'), false},
		{"dtmf hash", ParseDTMFTone, "#", DTMFTone('#'), false},
		{"dtmf letter", ParseDTMFTone, "D", DTMFTone('D'), false},
		{"dtmf empty", ParseDTMFTone, "", nil, true},
		{"dtmf bad", ParseDTMFTone, "x", nil, true},
		{"cgreg read", ParseRegistrationStatus, "0,1", RegHome, false},
		{"cgreg read with location", ParseRegistrationStatus, `2,5,"1A2B","01C3"`, RegRoaming, false},
		{"cgreg unsolicited", ParseRegistrationStatus, "2", RegSearching, false},
		{"cgreg unsolicited with location", ParseRegistrationStatus, `1,"1A2B","01C3"`, RegHome, false},
		{"cgreg out of range", ParseRegistrationStatus, "0,9", nil, true},
		{"cgreg garbage", ParseRegistrationStatus, "x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parser(tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEvents(t *testing.T) {
	require.NoError(t, validateEvents(DefaultEvents()))

	require.Error(t, validateEvents(nil))
	require.Error(t, validateEvents([]EventSpec{{Token: "", Code: EventCFUN}}))
	require.Error(t, validateEvents([]EventSpec{{Token: "+X:", Code: ResultOK}}))
	require.Error(t, validateEvents([]EventSpec{
		{Token: "+X:", Code: EventCFUN},
		{Token: "+Y:", Code: EventCFUN},
	}))
}

func TestDefaultEventsIsACopy(t *testing.T) {
	a := DefaultEvents()
	a[0].Token = "+MUTATED:"

	assert.Equal(t, TokenCFUN, DefaultEvents()[0].Token)
}

func TestResult(t *testing.T) {
	assert.True(t, EventCPIN.IsEvent())
	assert.False(t, ResultNoEvent.IsEvent())
	assert.True(t, ResultTimeout.IsTerminal())
	assert.False(t, ResultPending.IsTerminal())
	assert.Equal(t, "EVT_CPIN", EventCPIN.String())
	assert.Equal(t, "TIMEOUT", ResultTimeout.String())
	assert.Equal(t, "Result(3)", Result(3).String())
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "full", FunctionFull.String())
	assert.Equal(t, "SIM PUK", SIMPUK.String())
	assert.Equal(t, "#", DTMFTone('#').String())
	assert.Equal(t, "registered, roaming", RegRoaming.String())
	assert.True(t, RegRoaming.Registered())
	assert.False(t, RegDenied.Registered())
}
