package lang

import (
	"sort"
	"strings"
)

const adverbWords = `
abjectly ably abnormally abruptly absently absentmindedly absolutely absurdly
abundantly academically accidentally accusingly actively acutely adamantly
admiringly adoringly affectionately aggressively agilely agreeably aimlessly
airily alarmingly alertly amazingly ambiguously amiably amusedly angelically
angrily annoyingly anxiously apathetically apologetically appreciatively
approvingly arrogantly artfully attentively awkwardly
badly bashfully beautifully begrudgingly bitterly blankly blindly blissfully
blushingly boldly boredly boyishly bravely breathlessly briefly brightly
brilliantly briskly broadly brutally busily
calmly candidly carefully carelessly casually cautiously charmingly cheekily
cheerfully childishly clumsily coldly comfortably comically compassionately
confidently confusedly contentedly contritely coolly courageously coyly crazily
critically crossly cruelly curiously cutely cynically
daintily dangerously daringly darkly dearly decisively deeply defiantly
deliberately delicately delightedly demurely desperately devilishly devotedly
diabolically diligently dimly disappointedly discreetly disdainfully
disgustedly dizzily doubtfully dramatically dreamily drowsily dumbly dutifully
eagerly earnestly easily ecstatically elegantly eloquently embarrassedly
emphatically enthusiastically enviously evilly exasperatedly excitedly
expectantly expertly
faintly faithfully fearfully fearlessly ferociously fiercely firmly flirtatiously
fondly foolishly forcefully formally frankly frantically freely frenetically
fretfully friendly frostily furiously
gallantly generously gently giddily gingerly gladly gleefully gloomily
gracefully graciously gratefully greedily grimly grumpily guiltily
happily harshly hastily heartily heavily helpfully helplessly hesitantly
hopefully hopelessly horribly hotly hungrily hurriedly hysterically
icily idly ignorantly impatiently impishly impolitely incredulously
indifferently indignantly innocently inquisitively insanely intensely
interestedly ironically irritably
jealously jokingly jovially joyfully joyously judgementally
keenly kindly knowingly
lamely languidly lazily lightly listlessly longingly loudly lovingly loyally
madly magnificently majestically maliciously manically meaningfully meekly
merrily mischievously miserably mockingly modestly momentarily morosely
mournfully musically mysteriously
naively narrowly nastily naughtily neatly nervously nicely nobly nocturnally
noiselessly noisily nominally nonchalantly normally nostalgically notably
obediently obnoxiously oddly offensively officially ominously openly
optimistically overconfidently
painfully passionately patiently peacefully perfectly pensively pitifully
playfully pleasantly poetically pointedly politely pompously positively
proudly provocatively puzzledly
quaintly questioningly quickly quietly quirkily
rapidly readily reassuringly recklessly regretfully relentlessly reluctantly
remorsefully repeatedly reproachfully resignedly respectfully righteously
romantically roughly rudely ruefully
sadly sarcastically sardonically savagely scornfully seductively selfishly
sensually seriously shakily sharply sheepishly shyly silently sillily
sincerely skeptically sleepily slowly slyly smugly sneakily softly solemnly
sorrowfully speechlessly stealthily sternly stiffly strangely strictly
stubbornly stupidly suddenly sulkily suspiciously sweetly sympathetically
tactfully tearfully tenderly tensely thankfully thoughtfully tightly tiredly
tragically tremulously triumphantly truthfully
uncertainly uncomfortably unconvincingly understandingly uneasily unhappily
unknowingly unwillingly urgently
vaguely vainly valiantly vehemently victoriously viciously vigorously
violently virtuously vivaciously
warily warmly weakly wearily weirdly whimsically wickedly wildly willingly
wisely wistfully wittily wonderingly worriedly wryly
yawningly yearningly
zanily zealously zestfully zonally zoologically
`

// ADVERBS is the set of adverbs usable with soul emotes.
var ADVERBS map[string]struct{}

// AdverbList holds ADVERBS in sorted order.
var AdverbList []string

func init() {
	AdverbList = strings.Fields(adverbWords)
	sort.Strings(AdverbList)
	ADVERBS = make(map[string]struct{}, len(AdverbList))
	for _, a := range AdverbList {
		ADVERBS[a] = struct{}{}
	}
}

// IsAdverb reports whether word is a known adverb.
func IsAdverb(word string) bool {
	_, ok := ADVERBS[word]
	return ok
}

// AdverbByPrefix returns the sorted adverbs starting with prefix, at most
// limit of them. limit <= 0 means no limit.
func AdverbByPrefix(prefix string, limit int) []string {
	i := sort.SearchStrings(AdverbList, prefix)
	var out []string
	for ; i < len(AdverbList) && strings.HasPrefix(AdverbList[i], prefix); i++ {
		out = append(out, AdverbList[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
