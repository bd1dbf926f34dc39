package classifier

import "regexp"

// Fingerprint is a pattern found on a known block page.
type Fingerprint struct {
	// Country is the ISO code of the country the block page was seen in.
	Country string
	Pattern *regexp.Regexp
}

// HeaderFingerprint is a pattern found in a block page's response header.
type HeaderFingerprint struct {
	Country string
	Header  string
	Pattern *regexp.Regexp
}

func literal(country, s string) Fingerprint {
	return Fingerprint{Country: country, Pattern: regexp.MustCompile(regexp.QuoteMeta(s))}
}

func pattern(country, expr string) Fingerprint {
	return Fingerprint{Country: country, Pattern: regexp.MustCompile(expr)}
}

// iframeFingerprints match the src of an iframe that embeds a block page.
var iframeFingerprints = []Fingerprint{
	pattern("BH", `^https?://www\.anonymous\.com\.bh`),
	pattern("IN", `^https?://www\.airtel\.in/dot/`),
	pattern("IR", `^https?://10\.10`),
	pattern("OM", `^https?://block\.om/`),
	pattern("SA", `^https?://128\.204\.240\.1`),
	pattern("SD", `^https?://196\.29\.164\.27/ntc/ntcblock\.html`),
	pattern("TH", `^http://103\.208\.24\.21`),
}

// locationFingerprints match redirect targets that are block pages. They are
// also the known-bad request URLs used when no body could be read.
var locationFingerprints = []Fingerprint{
	literal("ID", "http://internet-positif.org"),
	literal("KR", "http://www.warning.or.kr"),
	literal("NO", "http://block-no.altibox.net/"),
	literal("PT", "http://mobilegen.vodafone.pt/denied/dn"),
	literal("QA", "http://www.vodafone.qa/alu.cfm"),
	literal("RU", "http://warning.rt.ru"),
	literal("RU", "https://www.atlex.ru/block.html"),
	literal("RU", "http://block.acs-group.net.ru/block/?"),
	pattern("RU", `http://blackhole\.beeline\.ru/.*`),
	literal("SD", "http://196.1.211.6:8080/alert/"),
	literal("SG", "http://www.starhub.com/mda-blocked/01.html"),
	literal("UK", "http://blocked.nb.sky.com"),
	literal("KW", "http://blocked.zajil.com/"),
}

// bodyFingerprints match text in the body of a block page.
var bodyFingerprints = []Fingerprint{
	literal("BE", "that is considered illegal according to Belgian legislation"),
	literal("BH", "This web site has been blocked for violating regulations and laws of Kingdom of Bahrain."),
	literal("CY", "nba.com.cy/Eas/eas.nsf/All/6F7F17A7790A55C8C2257B130055C86F"),
	literal("DK", "lagt at blokere for adgang til siden."),
	literal("FR", `xtpage = "page-blocage-terrorisme"`),
	literal("GR", "www.gamingcommission.gov.gr/index.php/forbidden-access-black-list/"),
	literal("HU", "14. pontja, illetve 36/G"),
	literal("ID", "access to this page is blocked due to Communication and Informatics Ministerial Decree Number 19/2014 regarding Internet Safe"),
	literal("IN", "The page you have requested has been blocked"),
	literal("IN", "Your requested url has been blocked as per the directions received from Department of Telecommunications,Government of India."),
	literal("IN", "Your requested URL has been blocked as per the directions received from Department of Telecommunications, Government of India."),
	literal("IR", "http://peyvandha.ir"),
	literal("IT", "GdF Stop Page"),
	literal("KR", "http://warning.or.kr"),
	literal("KR", `<meta name="kcsc" content="blocking" />`),
	literal("LB", "قد حجب الموقع بناء لأمر القضاء اللبناني"),
	literal("MY", "This website is not available in Malaysia as it violate"),
	literal("PK", "prohibited for viewership from within Pakistan"),
	literal("RU", "http://eais.rkn.gov.ru/"),
	literal("SA", `page should not be blocked please <a href="http://www.internet.gov.sa/`),
	literal("SG", "it contravenes the Broadcasting (Class Licence) Notification issued by the Info-communications Media Development Authority"),
	literal("SG", "access is restricted by the Media Development Authority"),
	literal("TH", "ถูกระงับโดยกระทรวงดิจิทัลเพื่อเศรษฐกิจและสังคม"),
	literal("TH", "could have an affect on or be against the security of the Kingdom, public order or good morals."),
	literal("TR", "<title>Telekomünikasyon İletişim Başkanlığı</title>"),

	// NetSweeper appliances
	pattern("", `src=["',]http://(?:[0-9]{1,3}\.){3}[0-9]{1,3}(?::[0-9]{2,5})?/webadmin/deny/`),
	pattern("", `src=["',]http://(?:[0-9]{1,3}\.){3}[0-9]{1,3}(?::[0-9]{2,5})?/blocked.html`),
	literal("", "The url has been blocked"),
}

// headerFingerprints match response headers other than Location.
var headerFingerprints = []HeaderFingerprint{
	{Country: "SA", Header: "Server", Pattern: regexp.MustCompile(`Protected by WireFilter`)},
	{Country: "UZ", Header: "Via", Pattern: regexp.MustCompile(regexp.QuoteMeta("1.1 C1102"))},
}
