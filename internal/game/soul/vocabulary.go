package soul

import "sort"

// Form selects how an emote's sentence is built when the verb has no
// explicit template.
type Form int

const (
	// Default emotes read "smile happily at Julie"; targets are optional.
	Default Form = iota
	// Prev emotes read "thank Julie heartily"; a target is required.
	Prev
	// Phys emotes read "pat Julie happily on the head"; a target is required.
	Phys
	// Simple emotes use their own templates.
	Simple
)

// Verb describes one emote.
//
// Templates may contain the placeholders {how} (adverb), {who} (targets),
// {at} (preposition and targets, empty without targets), {where} (body
// part phrase), {msg} (quoted message), {your} (the actor's possessive)
// and {poss} (possessive of the targets). A word
// followed by '$' is conjugated for the third person ("pat$" → "pats").
type Verb struct {
	Form       Form
	Adverb     string // used when the player gives none
	Where      string // used when the player names no body part
	At         string // preposition before the targets, "at" if empty
	Text       string // Simple form template with targets
	Alone      string // Simple form template without targets
	Aggressive bool
}

// template returns the sentence template for the verb. ok is false when
// the verb needs a target and none was given.
func (v Verb) template(hasTargets bool) (tmpl string, ok bool) {
	switch v.Form {
	case Prev:
		return "$ {who} {how}", hasTargets
	case Phys:
		return "$ {who} {how} {where}", hasTargets
	case Simple:
		if hasTargets {
			if v.Text == "" {
				return v.Alone + " {at}", true
			}
			return v.Text, true
		}
		if v.Alone == "" {
			return "", false
		}
		return v.Alone, true
	}
	return "$ {how} {at}", true
}

func (v Verb) at() string {
	if v.At == "" {
		return "at"
	}
	return v.At
}

// VERBS is the emote vocabulary.
var VERBS = map[string]Verb{
	// smiling and laughing
	"smile":   {Adverb: "happily"},
	"grin":    {Adverb: "evilly"},
	"beam":    {Adverb: "brightly"},
	"smirk":   {},
	"laugh":   {},
	"giggle":  {Adverb: "merrily"},
	"chuckle": {Adverb: "politely"},
	"cackle":  {Adverb: "gleefully"},
	"snicker": {},
	"chortle": {Adverb: "gleefully"},
	"wink":    {Adverb: "suggestively"},
	"beckon":  {},

	// unhappy
	"frown":    {},
	"pout":     {},
	"scowl":    {Adverb: "darkly"},
	"sneer":    {Adverb: "disdainfully"},
	"glare":    {Adverb: "stonily"},
	"sigh":     {Adverb: "deeply"},
	"sob":      {},
	"weep":     {},
	"cry":      {Form: Simple, Alone: "burst$ into tears {how}", Text: "cry$ {how} on {poss} shoulder"},
	"whine":    {},
	"whimper":  {},
	"moan":     {},
	"groan":    {},
	"grumble":  {},
	"complain": {At: "to"},
	"fume":     {},
	"sulk":     {Adverb: "in the corner"},
	"cringe":   {Adverb: "in terror"},
	"cower":    {},
	"shudder":  {},
	"shiver":   {Adverb: "from the cold"},
	"tremble":  {},
	"panic":    {},

	// noises
	"growl":   {},
	"snarl":   {},
	"hiss":    {},
	"howl":    {},
	"roar":    {},
	"bark":    {},
	"purr":    {Adverb: "contentedly"},
	"grunt":   {},
	"mumble":  {},
	"mutter":  {},
	"scream":  {Adverb: "loudly"},
	"shout":   {},
	"yell":    {Adverb: "in a high pitched voice"},
	"cough":   {Adverb: "noisily"},
	"sneeze":  {Form: Simple, Alone: "sneeze$ {how}", Text: "sneeze$ {how} on {who}", Adverb: "loudly"},
	"snore":   {Form: Simple, Alone: "snore$ {how}", Adverb: "loudly"},
	"hiccup":  {Form: Simple, Alone: "hiccup$ {how}"},
	"burp":    {Form: Simple, Alone: "burp$ {how}", Adverb: "rudely"},
	"sniff":   {},
	"snort":   {},
	"whistle": {Adverb: "appreciatively"},
	"hmm":     {Form: Simple, Alone: "go$ hmmm {how}", Adverb: "thoughtfully"},
	"oops":    {Form: Simple, Alone: "go$ 'oops' {how}"},
	"ack":     {Form: Simple, Alone: "go$ 'ack!' {how}"},
	"sing":    {At: "to", Adverb: "melodiously"},
	"whisper": {Form: Simple, Alone: "whisper$ {msg} {how}", Text: "whisper$ {msg} {how} to {who}"},

	// gestures
	"nod":       {Adverb: "solemnly"},
	"shrug":     {Form: Simple, Alone: "shrug$ {how}", Text: "shrug$ {how} at {who}"},
	"wave":      {Adverb: "happily"},
	"bye":       {Form: Simple, Alone: "wave$ goodbye {how}", Text: "wave$ goodbye to {who} {how}"},
	"hi":        {Form: Simple, Alone: "say$ hi {how}", Text: "say$ hi to {who} {how}"},
	"bow":       {Adverb: "gracefully", At: "to"},
	"curtsey":   {Adverb: "gracefully", At: "to"},
	"salute":    {Form: Simple, Alone: "salute$ {how}", Text: "salute$ {who} {how}"},
	"point":     {},
	"stare":     {},
	"gaze":      {Adverb: "dreamily"},
	"peer":      {Adverb: "quizzically"},
	"leer":      {},
	"ogle":      {Form: Prev},
	"eye":       {Form: Prev, Adverb: "suspiciously"},
	"blink":     {},
	"blush":     {},
	"yawn":      {},
	"applaud":   {Adverb: "wholeheartedly"},
	"cheer":     {Adverb: "enthusiastically"},
	"clap":      {Form: Simple, Alone: "clap$ {your} hands {how}", Text: "clap$ {your} hands {how} for {who}"},
	"shake":     {Form: Simple, Alone: "shake$ {your} head {how}", Text: "shake$ hands with {who} {how}"},
	"scratch":   {Form: Simple, Alone: "scratch$ {your} head {how}", Text: "scratch$ {who} {how} {where}"},
	"facepalm":  {Form: Simple, Alone: "put$ {your} face in {your} hands {how}"},
	"flex":      {Form: Simple, Alone: "flex$ {your} muscles {how}", Text: "flex$ {your} muscles {how} at {who}", Adverb: "impressively"},
	"roll":      {Form: Simple, Alone: "roll$ {your} eyes {how}", Text: "roll$ {your} eyes {how} at {who}"},
	"raise":     {Form: Simple, Alone: "raise$ an eyebrow {how}", Text: "raise$ an eyebrow {how} at {who}"},
	"twiddle":   {Form: Simple, Alone: "twiddle$ {your} thumbs {how}"},
	"tap":       {Form: Simple, Alone: "tap$ {your} foot {how}", Text: "tap$ {who} {how} {where}", Adverb: "impatiently"},
	"stomp":     {Form: Simple, Alone: "stomp$ {your} feet {how}", Adverb: "angrily"},
	"pace":      {Form: Simple, Alone: "pace$ around {how}", Adverb: "nervously"},
	"stretch":   {Form: Simple, Alone: "stretch$ {how}", Adverb: "lazily"},
	"kneel":     {At: "before"},
	"grovel":    {At: "before"},
	"dance":     {At: "with"},
	"jump":      {Adverb: "up and down"},
	"bounce":    {Adverb: "around"},
	"hop":       {Adverb: "around"},
	"think":     {Form: Simple, Alone: "think$ {how}", Adverb: "carefully"},
	"ponder":    {Form: Simple, Alone: "ponder$ the situation {how}"},
	"wonder":    {Form: Simple, Alone: "wonder$ {how}"},
	"agree":     {At: "with"},
	"disagree":  {At: "with"},
	"apologize": {Adverb: "profusely", At: "to"},
	"listen":    {Adverb: "attentively", At: "to"},
	"drool":     {},
	"beg":       {Form: Simple, Alone: "beg$ for mercy {how}", Text: "beg$ {who} for mercy {how}"},

	// friendly
	"thank":        {Form: Prev, Adverb: "heartily"},
	"greet":        {Form: Prev, Adverb: "happily"},
	"welcome":      {Form: Prev, Adverb: "warmly"},
	"hug":          {Form: Prev},
	"embrace":      {Form: Prev, Adverb: "warmly"},
	"cuddle":       {Form: Prev},
	"comfort":      {Form: Prev},
	"congratulate": {Form: Prev},
	"forgive":      {Form: Prev},
	"love":         {Form: Prev},
	"miss":         {Form: Prev},
	"admire":       {Form: Prev},
	"worship":      {Form: Prev},
	"tease":        {Form: Prev},
	"mock":         {Form: Prev},
	"ignore":       {Form: Prev},
	"squeeze":      {Form: Prev, Adverb: "fondly"},
	"pat":          {Form: Phys, Where: "on the head"},
	"pet":          {Form: Phys, Where: "on the head"},
	"kiss":         {Form: Phys},
	"smooch":       {Form: Phys},
	"nuzzle":       {Form: Phys, Where: "on the neck"},
	"caress":       {Form: Phys},
	"stroke":       {Form: Phys},
	"fondle":       {Form: Phys},
	"massage":      {Form: Phys, Where: "on the back"},
	"touch":        {Form: Phys},
	"lick":         {Form: Phys},
	"nibble":       {Form: Phys, Where: "on the ear"},
	"tickle":       {Form: Phys},
	"nudge":        {Form: Phys},
	"poke":         {Form: Phys, Where: "in the ribs"},

	// hostile
	"slap":     {Form: Phys, Where: "in the face", Aggressive: true},
	"kick":     {Form: Phys, Where: "in the shin", Aggressive: true},
	"punch":    {Form: Phys, Where: "in the stomach", Aggressive: true},
	"hit":      {Form: Phys, Aggressive: true},
	"bite":     {Form: Phys, Where: "on the arm", Aggressive: true},
	"spank":    {Form: Phys, Where: "on the butt", Aggressive: true},
	"knee":     {Form: Phys, Where: "in the groin", Aggressive: true},
	"elbow":    {Form: Phys, Where: "in the ribs", Aggressive: true},
	"strangle": {Form: Prev, Adverb: "with both hands", Aggressive: true},
	"insult":   {Form: Prev, Adverb: "rudely", Aggressive: true},
	"attack":   {Form: Prev, Aggressive: true},
	"threaten": {Form: Prev, Aggressive: true},
}

// AGGRESSIVE_VERBS holds the emotes that are hostile towards their targets.
var AGGRESSIVE_VERBS = func() map[string]bool {
	m := make(map[string]bool)
	for name, v := range VERBS {
		if v.Aggressive {
			m[name] = true
		}
	}
	return m
}()

// BODY_PARTS maps a body part to the phrase used in an emote.
var BODY_PARTS = map[string]string{
	"hand":     "on the hand",
	"forehead": "on the forehead",
	"head":     "on the head",
	"face":     "in the face",
	"ear":      "in the ear",
	"nose":     "on the nose",
	"eye":      "in the eye",
	"neck":     "on the neck",
	"chin":     "under the chin",
	"cheek":    "on the cheek",
	"lips":     "on the lips",
	"mouth":    "in the mouth",
	"arm":      "on the arm",
	"shoulder": "on the shoulder",
	"back":     "on the back",
	"chest":    "on the chest",
	"stomach":  "in the stomach",
	"ribs":     "in the ribs",
	"belly":    "on the belly",
	"butt":     "on the butt",
	"groin":    "in the groin",
	"leg":      "on the leg",
	"knee":     "on the knee",
	"shin":     "in the shin",
	"foot":     "on the foot",
	"toes":     "on the toes",
	"finger":   "on the finger",
	"hair":     "in the hair",
}

// Qualifier transforms an emote. Self and Room are format strings for
// the actor's and everybody else's view. When UseRoomForm is false the
// room view keeps the verb unconjugated ("tries to pat Julie").
type Qualifier struct {
	Self        string
	Room        string
	UseRoomForm bool
}

// ACTION_QUALIFIERS are the words that may precede an emote verb.
var ACTION_QUALIFIERS = map[string]Qualifier{
	"suddenly": {"suddenly %s", "suddenly %s", true},
	"fail":     {"try to %s, but fail miserably", "tries to %s, but fails miserably", false},
	"again":    {"%s again", "%s again", true},
	"pretend":  {"pretend to %s", "pretends to %s", false},
	"dont":     {"don't %s", "doesn't %s", false},
	"don't":    {"don't %s", "doesn't %s", false},
	"attempt":  {"attempt to %s, without much success", "attempts to %s, without much success", false},
}

var (
	joiners      = map[string]bool{"and": true, "&": true, ",": true}
	articles     = map[string]bool{"a": true, "an": true, "the": true}
	prepositions = map[string]bool{
		"to": true, "on": true, "in": true, "at": true, "with": true, "from": true,
		"into": true, "onto": true, "under": true, "over": true, "by": true, "about": true,
		"through": true, "off": true, "of": true, "upon": true, "inside": true, "behind": true,
		"against": true, "across": true, "towards": true, "toward": true,
	}
	selfWords     = map[string]bool{"me": true, "myself": true, "self": true}
	everyoneWords = map[string]bool{"everyone": true, "everybody": true, "all": true}
	pronouns      = map[string]bool{"him": true, "her": true, "it": true, "them": true}
)

// VerbNames returns the emote verbs, sorted.
func VerbNames() []string {
	out := make([]string, 0, len(VERBS))
	for name := range VERBS {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
