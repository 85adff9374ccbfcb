package breaks

// Rotations per break-duration tier. Order matters: selection is index based
// so the same gap always yields the same activity.
var (
	shortRotation = []Activity{
		ActivityBreathing, ActivityHydrate, ActivityEyeRest, ActivityStretch, ActivityMeditation,
	}
	mediumRotation = []Activity{
		ActivityStretch, ActivityBreathing, ActivityWalk, ActivityHydrate, ActivityMeditation, ActivityEyeRest,
	}
	longRotation = []Activity{
		ActivityWalk, ActivityStretch, ActivityMindfulnessSketch, ActivityHydrate,
		ActivityMeditation, ActivitySnack, ActivityBreathing, ActivityRest,
	}
	extendedRotation = []Activity{
		ActivityRest, ActivityPowerNap, ActivityMeditation, ActivityWalk, ActivityMindfulnessSketch,
	}
)

func rotationFor(duration int) []Activity {
	switch {
	case duration <= 7:
		return shortRotation
	case duration <= 12:
		return mediumRotation
	case duration <= 20:
		return longRotation
	default:
		return extendedRotation
	}
}

// SelectActivity picks the rotation entry for the break following the event at meetingIndex.
func SelectActivity(meetingIndex, duration int) Activity {
	cycle := rotationFor(duration)
	if meetingIndex < 0 {
		meetingIndex = -meetingIndex
	}
	return cycle[meetingIndex%len(cycle)]
}

// CalmingActivity is the forced choice when an override asks for a calming break.
func CalmingActivity(duration int) Activity {
	if duration <= 7 {
		return ActivityBreathing
	}
	return ActivityMeditation
}
