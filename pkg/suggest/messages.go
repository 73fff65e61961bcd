package suggest

import "math/rand/v2"

// Cheers are shown right after a task is completed.
var Cheers = []string{
	"BOOM! One down! 💥",
	"Look at you being productive!",
	"That wasn't so bad, right?",
	"Your future self thanks you!",
	"Serotonin unlocked! 🔓",
	"You absolute legend!",
	"Task obliterated! ✨",
	"WHO'S CRUSHING IT? YOU ARE!",
}

// Mantras are shown while a suggestion is loading.
var Mantras = []string{
	"Summoning executive function...",
	"Consulting the ADHD gods...",
	"Finding the least scary task...",
	"Negotiating with your inner chaos goblin...",
	"Convincing your brain this is a good idea...",
	"Scanning for the path of least resistance...",
}

// Pick returns a random entry of list, or "" when it is empty.
func Pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[rand.IntN(len(list))]
}
