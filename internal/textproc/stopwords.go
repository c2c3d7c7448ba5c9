package textproc

// russianStopWords is the canonical Russian stopword list (NLTK order).
var russianStopWords = []string{
	"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а",
	"то", "все", "она", "так", "его", "но", "да", "ты", "к", "у", "же",
	"вы", "за", "бы", "по", "только", "ее", "мне", "было", "вот", "от",
	"меня", "еще", "нет", "о", "из", "ему", "теперь", "когда", "даже",
	"ну", "вдруг", "ли", "если", "уже", "или", "ни", "быть", "был",
	"него", "до", "вас", "нибудь", "опять", "уж", "вам", "ведь", "там",
	"потом", "себя", "ничего", "ей", "может", "они", "тут", "где",
	"есть", "надо", "ней", "для", "мы", "тебя", "их", "чем", "была",
	"сам", "чтоб", "без", "будто", "чего", "раз", "тоже", "себе", "под",
	"будет", "ж", "тогда", "кто", "этот", "того", "потому", "этого",
	"какой", "совсем", "ним", "здесь", "этом", "один", "почти", "мой",
	"тем", "чтобы", "нее", "сейчас", "были", "куда", "зачем", "всех",
	"никогда", "можно", "при", "наконец", "два", "об", "другой", "хоть",
	"после", "над", "больше", "тот", "через", "эти", "нас", "про",
	"всего", "них", "какая", "много", "разве", "три", "эту", "моя",
	"впрочем", "хорошо", "свою", "этой", "перед", "иногда", "лучше",
	"чуть", "том", "нельзя", "такой", "им", "более", "всегда", "конечно",
	"всю", "между",
}

// extraStopWords extends the canonical list with greetings and connector
// words common in support tickets.
var extraStopWords = []string{
	"добрый", "день", "вечер", "привет", "здравствуйте", "запрос",
	"оригинальный", "и", "в", "у", "с", "к",
}

// keepWords are exceptions retained despite appearing in the stopword
// list: negation flips the meaning of a ticket and must survive.
var keepWords = []string{"не"}

// stopWordStems holds the stopword set keyed by stem, so that stemmed
// document tokens can be matched against it.
var stopWordStems = buildStopWordStems()

func buildStopWordStems() map[string]struct{} {
	kept := make(map[string]struct{}, len(keepWords))
	for _, w := range keepWords {
		kept[Stem(w)] = struct{}{}
	}

	set := make(map[string]struct{}, len(russianStopWords)+len(extraStopWords))
	for _, w := range append(append([]string{}, russianStopWords...), extraStopWords...) {
		stem := Stem(w)
		if _, keep := kept[stem]; keep {
			continue
		}
		set[stem] = struct{}{}
	}
	return set
}

// isStopWord reports whether a stemmed token belongs to the stopword set.
func isStopWord(stem string) bool {
	_, ok := stopWordStems[stem]
	return ok
}
