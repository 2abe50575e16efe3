package options

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNestedPath(t *testing.T) {
	opts := NewStructuredOptions()
	require.NoError(t, opts.Set(map[string]any{
		"int.min.is_enabled":           false,
		"float.is_enabled":             "false",
		"data_labeler.max_sample_size": 500,
	}))

	enabled, err := opts.Sub("int").IsPropEnabled("min")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, opts.Sub("float").Enabled())

	v, err := opts.Lookup("data_labeler.max_sample_size")
	require.NoError(t, err)
	assert.Equal(t, 500, v)

	// untouched paths keep their defaults
	enabled, err = opts.Sub("int").IsPropEnabled("max")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetUnknownAttribute(t *testing.T) {
	opts := NewStructuredOptions()

	err := opts.Set(map[string]any{"int.nope.is_enabled": true})
	var unk *UnknownOptionError
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "int", unk.Path)
	assert.Equal(t, "nope", unk.Attr)

	err = opts.Set(map[string]any{"int.is_enabled.deeper": true})
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "type object 'int.is_enabled' has no attribute 'deeper'", err.Error())

	err = opts.Set(map[string]any{"bogus": true})
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "StructuredOptions", unk.Path)
}

func TestSetGroupAssignment(t *testing.T) {
	err := NewIntOptions().Set(map[string]any{"min": false})
	assert.ErrorIs(t, err, ErrGroupAssignment)
}

func TestSetBroadcastsToDescendants(t *testing.T) {
	opts := NewProfilerOptions()
	require.NoError(t, opts.Set(map[string]any{"data_labeler.is_enabled": false}))

	structured := opts.Sub("structured_options")
	unstructured := opts.Sub("unstructured_options")
	assert.False(t, structured.Sub("data_labeler").Enabled())
	assert.False(t, unstructured.Sub("data_labeler").Enabled())
	assert.NotContains(t, EnabledColumns(structured), "data_labeler")
	assert.Contains(t, EnabledColumns(structured), "int")
}

func TestNumericStatsFanOut(t *testing.T) {
	opts := NewIntOptions()
	require.NoError(t, opts.Set(map[string]any{"is_numeric_stats_enabled": false}))
	for _, name := range numericStats {
		enabled, err := opts.IsPropEnabled(name)
		require.NoError(t, err)
		assert.False(t, enabled, name)
	}
	enabled, err := opts.IsPropEnabled("is_numeric_stats_enabled")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, opts.Set(map[string]any{"histogram_and_quantiles.is_enabled": true}))
	enabled, _ = opts.IsPropEnabled("is_numeric_stats_enabled")
	assert.True(t, enabled)
}

func TestValidateVarianceWithoutSum(t *testing.T) {
	opts := NewIntOptions()
	require.NoError(t, opts.Set(map[string]any{"sum.is_enabled": false}))

	errs, err := opts.Validate(false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"IntOptions: The numeric stats must toggle on the sum if the variance is toggled on.",
	}, errs)

	_, err = opts.Validate(true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, errs, verr.Messages())
}

func TestValidateNamesNestedPath(t *testing.T) {
	opts := NewProfilerOptions()
	require.NoError(t, opts.Set(map[string]any{
		"structured_options.float.sum.is_enabled": false,
		"structured_options.int.min.is_enabled":   "maybe",
	}))

	_, err := opts.Validate(true)
	require.Error(t, err)
	assert.Equal(t,
		"ProfilerOptions.structured_options.int.min.is_enabled must be a Boolean.\n"+
			"ProfilerOptions.structured_options.float: The numeric stats must toggle on the sum if the variance is toggled on.",
		err.Error())
}

func TestValidateSettingTypes(t *testing.T) {
	opts := NewDataLabelerOptions()
	require.NoError(t, opts.Set(map[string]any{
		"data_labeler_dirpath": 7,
		"max_sample_size":      "lots",
	}))
	errs, err := opts.Validate(false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DataLabelerOptions.data_labeler_dirpath must be a string.",
		"DataLabelerOptions.max_sample_size must be an integer.",
	}, errs)
}

func TestValidateWarnsWhenNumericStatsDisabled(t *testing.T) {
	logger, hook := test.NewNullLogger()
	opts := NewTextOptions()
	opts.SetLogger(logger)
	require.NoError(t, opts.Set(map[string]any{"is_numeric_stats_enabled": false}))

	errs, err := opts.Validate(true)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "TextOptions.numeric_stats: The numeric stats are completely disabled.", hook.LastEntry().Message)

	_, warns := NewTextOptions().Check()
	assert.Empty(t, warns)
}

func TestPropertiesIsDeepCopy(t *testing.T) {
	opts := NewFloatOptions()
	props := opts.Properties()
	assert.Equal(t, true, props["is_numeric_stats_enabled"])
	assert.Equal(t, map[string]any{"is_enabled": true}, props["precision"])

	props["precision"].(map[string]any)["is_enabled"] = false
	enabled, err := opts.IsPropEnabled("precision")
	require.NoError(t, err)
	assert.True(t, enabled)

	clone := opts.Clone()
	require.NoError(t, clone.Set(map[string]any{"precision.is_enabled": false}))
	enabled, _ = opts.IsPropEnabled("precision")
	assert.True(t, enabled)
}

func TestIsPropEnabledUnknown(t *testing.T) {
	_, err := NewCategoricalOptions().IsPropEnabled("vocab")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}
