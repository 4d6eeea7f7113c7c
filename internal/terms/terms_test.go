package terms

import (
	"strings"
	"testing"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "mixed delimiters",
			input:    "甲公司,乙公司；丙公司、丁公司|戊公司\n己公司",
			expected: []string{"甲公司", "乙公司", "丙公司", "丁公司", "戊公司", "己公司"},
		},
		{
			name:     "full width comma and whitespace",
			input:    " 101 ， 202，  303 ",
			expected: []string{"101", "202", "303"},
		},
		{
			name:     "deduplicates preserving first occurrence",
			input:    "a,b,a,c,b",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "drops empty segments",
			input:    ",,；,  ,x,",
			expected: []string{"x"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Split(tc.input))
		})
	}
}

func TestSplit_Idempotent(t *testing.T) {
	input := "张三、李四；110101199001011234，110***********1234|王五"
	first := Split(input)
	second := Split(strings.Join(first, ","))
	assert.Equal(t, first, second)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedKind TokenKind
		expectErr    bool
	}{
		{name: "numeric id", input: "42", expectedKind: KindNumericID},
		{name: "long numeric identifier", input: "110101199001011234", expectedKind: KindNumericID},
		{name: "masked identifier", input: "110***********1234", expectedKind: KindMasked},
		{name: "short masked identifier rejected", input: "1*2", expectErr: true},
		{name: "masked without suffix rejected", input: "110101*********", expectErr: true},
		{name: "masked without prefix rejected", input: "*********1234", expectErr: true},
		{name: "name", input: "张三", expectedKind: KindFreeText},
		{name: "alphanumeric code", input: "EXP-07", expectedKind: KindFreeText},
		{name: "symbols only rejected", input: "---", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := Classify(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)

				var invalidErr *apperrors.InvalidTokenError
				require.ErrorAs(t, err, &invalidErr)
				assert.Equal(t, tc.input, invalidErr.Token)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedKind, token.Kind)
		})
	}
}

func TestClassify_MaskedParts(t *testing.T) {
	token, err := Classify("110***********1234")
	require.NoError(t, err)
	assert.Equal(t, "110", token.Prefix)
	assert.Equal(t, "1234", token.Suffix)
}

func TestParse_NamesOffendingToken(t *testing.T) {
	_, err := Parse("张三,11**34,李四")
	require.Error(t, err)

	var invalidErr *apperrors.InvalidTokenError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "11**34", invalidErr.Token)
}

func TestSplitIDsAndNames(t *testing.T) {
	ids, names, err := SplitIDsAndNames("7、软件工程,12,通信工程")
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 12}, ids)
	assert.Equal(t, []string{"软件工程", "通信工程"}, names)
}

func TestSplitIDsAndNames_RejectsMasked(t *testing.T) {
	_, _, err := SplitIDsAndNames("7,110***********1234")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
