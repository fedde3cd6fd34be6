package dialogue

import "strings"

// cannedReplies short-circuits the generation backend for the highest
// frequency utterances. Latency and cost optimization only; removing an
// entry changes nothing about correctness.
var cannedReplies = map[string]string{
	"hello":       "Hello there! I'm absolutely delighted to meet you and I'm genuinely excited about our learning journey together. What fascinating topic would you like to explore today?",
	"hi":          "Hi! It's wonderful to connect with you. I'm here to make learning engaging and enjoyable. What subject are you curious about right now?",
	"hey":         "Hey! I love your enthusiasm. I'm ready to dive into some exciting learning with you. What would you like to discover today?",
	"how are you": "I'm doing fantastic, thank you for asking! I'm energized and ready to help you learn something amazing. How are you feeling about tackling new concepts today?",
	"thank you":   "You're so very welcome! It genuinely makes me happy when I can help clarify things for you. Learning together like this is exactly what I love most. What else can we explore?",
	"thanks":      "My absolute pleasure! Seeing concepts click for students is incredibly rewarding. I'm here whenever you need support on this learning adventure.",
	"goodbye":     "It's been such a pleasure learning with you today! Remember, every new concept you master builds your confidence. Keep that curiosity alive!",
	"bye":         "Take care, and remember how much you've accomplished today! I'm excited for our next learning session together.",
	"yes":         "Wonderful! I can tell you're really engaging with this material. Your understanding is building beautifully. Let me share the next fascinating piece of this puzzle.",
	"no":          "That's perfectly okay! Questions and uncertainty are natural parts of learning. Let me approach this from a different angle that might resonate better with you.",
	"okay":        "Excellent! I can see you're following along really well. Your engagement tells me you're ready for the next exciting concept we'll explore together.",
	"ok":          "Perfect! You're showing great focus and understanding. Now, here's where things get really interesting in our topic.",
	"sure":        "Fantastic! I love your openness to learning. Let me paint a clearer picture of this concept that I think you'll find genuinely fascinating.",
	"right":       "Exactly right! You're demonstrating excellent understanding. Building on that insight, let's explore how this connects to even bigger ideas.",
	"good":        "I'm so glad this is making sense! Your grasp of these concepts is developing beautifully. Let's continue building on this strong foundation.",
	"what":        "Great question! Let me explain that clearly for you.",
	"why":         "That's such an important question! Let me walk you through the reasoning behind this.",
	"how":         "Excellent question! Let me break that down step by step for you.",
	"really":      "Yes, absolutely! This is fascinating stuff. Let me tell you more about why this works the way it does.",
	"interesting": "I'm so glad you find this interesting! There's actually so much more to discover here.",
	"cool":        "Right? This topic has so many amazing layers to it! Let me show you another fascinating aspect.",
}

// cannedReply matches after lowercasing and stripping trailing punctuation.
func cannedReply(text string) (string, bool) {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), "?!.")
	reply, ok := cannedReplies[normalized]
	return reply, ok
}
