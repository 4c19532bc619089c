package topics

// Words that survive part-of-speech filtering but never name a subject:
// mistagged function words and chat title fillers.
var stopwordList = []string{
	"about", "above", "after", "again", "against", "all", "also", "and", "any", "are",
	"because", "been", "before", "being", "below", "best", "between", "both", "but",
	"can", "could", "did", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "had", "has", "have", "having", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "into", "its", "itself", "just", "more", "most",
	"not", "now", "off", "once", "only", "other", "our", "ours", "ourselves", "out",
	"over", "own", "same", "she", "should", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they", "this",
	"those", "through", "too", "under", "until", "very", "was", "were", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "would", "you",
	"your", "yours", "yourself", "yourselves",
	// chat title fillers
	"help", "request", "question", "questions", "using", "use", "make", "making", "get",
	"getting", "need", "new", "way", "ways", "tips", "guide", "explained", "explanation",
	"overview", "ideas", "create", "creating", "write", "writing", "find", "understanding",
	"understand", "chat", "conversation", "assistance", "vs", "via",
}
