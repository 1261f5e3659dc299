package models

import (
	"fmt"

	"github.com/julianstephens/nexus/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingDayStart:
			settings.DayStart = value
		case constants.SettingDayEnd:
			settings.DayEnd = value
		case constants.SettingBreakStart:
			settings.BreakStart = value
		case constants.SettingBreakEnd:
			settings.BreakEnd = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingMinSlotMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.MinSlotMin); err != nil {
				return Settings{}, fmt.Errorf("parsing min_slot_min: %w", err)
			}
		case constants.SettingWeightSoft:
			if _, err := fmt.Sscanf(value, "%f", &settings.WeightSoft); err != nil {
				return Settings{}, fmt.Errorf("parsing weight_soft_score: %w", err)
			}
		case constants.SettingWeightGoals:
			if _, err := fmt.Sscanf(value, "%f", &settings.WeightGoals); err != nil {
				return Settings{}, fmt.Errorf("parsing weight_goal_balance: %w", err)
			}
		case constants.SettingWeightFlow:
			if _, err := fmt.Sscanf(value, "%f", &settings.WeightFlow); err != nil {
				return Settings{}, fmt.Errorf("parsing weight_flow: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDayStart:    settings.DayStart,
		constants.SettingDayEnd:      settings.DayEnd,
		constants.SettingBreakStart:  settings.BreakStart,
		constants.SettingBreakEnd:    settings.BreakEnd,
		constants.SettingTimezone:    settings.Timezone,
		constants.SettingMinSlotMin:  fmt.Sprintf("%d", settings.MinSlotMin),
		constants.SettingWeightSoft:  fmt.Sprintf("%g", settings.WeightSoft),
		constants.SettingWeightGoals: fmt.Sprintf("%g", settings.WeightGoals),
		constants.SettingWeightFlow:  fmt.Sprintf("%g", settings.WeightFlow),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.DayStart == "" {
		settings.DayStart = constants.DefaultDayStart
	}
	if settings.DayEnd == "" {
		settings.DayEnd = constants.DefaultDayEnd
	}
	if settings.BreakStart == "" {
		settings.BreakStart = constants.DefaultBreakStart
	}
	if settings.BreakEnd == "" {
		settings.BreakEnd = constants.DefaultBreakEnd
	}
	if settings.MinSlotMin == 0 {
		settings.MinSlotMin = constants.MinSlotMin
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.WeightSoft == 0 {
		settings.WeightSoft = constants.DefaultWeightSoftScore
	}
	if settings.WeightGoals == 0 {
		settings.WeightGoals = constants.DefaultWeightGoalBalance
	}
	if settings.WeightFlow == 0 {
		settings.WeightFlow = constants.DefaultWeightFlow
	}
}
