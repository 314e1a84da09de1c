package knowledge

// StaticStore is an in-memory store built once from a fixed table.
type StaticStore struct {
	entries []Entry
}

// NewStaticStore validates entries and returns a store over a private copy.
func NewStaticStore(entries []Entry) (*StaticStore, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &StaticStore{entries: cp}, nil
}

// Builtin returns the compiled-in university knowledge base.
func Builtin() *StaticStore {
	s, err := NewStaticStore(builtinEntries)
	if err != nil {
		panic("knowledge: invalid builtin table: " + err.Error())
	}
	return s
}

func (s *StaticStore) ListEntries() []Entry {
	return s.entries
}

// Len returns the number of entries in the store.
func (s *StaticStore) Len() int {
	return len(s.entries)
}

// Get looks up an entry by id.
func (s *StaticStore) Get(id string) (Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

var builtinEntries = []Entry{
	{
		ID:             "adm-001",
		Category:       CategoryAdmissions,
		Content:        "The admission process for BS Computer Science requires a minimum of 50% marks in HSC Pre-Engineering or equivalent with Mathematics. Eligibility is determined through a combination of academic record and an entry test.",
		SourceDocument: "Prospectus 2024-25",
		PageNumber:     12,
	},
	{
		ID:             "adm-002",
		Category:       CategoryAdmissions,
		Content:        "Admissions for Fall Semester 2024 open in August. Students must apply online via the official university portal and upload digital copies of their CNIC, Matric, and Intermediate certificates.",
		SourceDocument: "Admission Circular 2024/02",
		PageNumber:     1,
	},
	{
		ID:             "fee-001",
		Category:       CategoryFeeStructure,
		Content:        "The semester fee for the BS Computer Science program (Morning) is PKR 45,000. For the Evening program, the fee is PKR 65,000. Note: Fees are subject to change by the syndicate.",
		SourceDocument: "Fee Schedule 2024",
		PageNumber:     4,
	},
	{
		ID:             "fee-002",
		Category:       CategoryFeeStructure,
		Content:        "A one-time admission fee of PKR 15,000 is mandatory for all new undergraduate enrollments, payable at the time of initial registration.",
		SourceDocument: "Fee Schedule 2024",
		PageNumber:     5,
	},
	{
		ID:             "prog-001",
		Category:       CategoryAcademicPrograms,
		Content:        "FUUAST Gulshan Campus offers degree programs in Computer Science, Mathematical Sciences, Business Administration, Urdu, Commerce, and various Social Sciences.",
		SourceDocument: "Academic Overview",
		PageNumber:     8,
	},
	{
		ID:             "cal-001",
		Category:       CategoryAcademicCalendar,
		Content:        "Final exams for the Fall 2024 semester are scheduled to begin from the second week of December 2024. Practical exams will follow the theory papers.",
		SourceDocument: "University Calendar 2024",
		PageNumber:     2,
	},
	{
		ID:             "conv-001",
		Category:       CategoryConvocation,
		Content:        "The 15th Convocation of FUUAST is expected to take place in March 2025. Graduates from the 2022-23 batches must register via the Registrar's office by January 2025.",
		SourceDocument: "Convocation Manual",
		PageNumber:     15,
	},
	{
		ID:             "gen-001",
		Category:       CategoryGeneral,
		Content:        "The Gulshan Campus of Federal Urdu University (FUUAST) is located on University Road, Gulshan-e-Iqbal, Karachi. It is accessible via public transport including the Peoples Bus Service.",
		SourceDocument: "Campus Guide",
		PageNumber:     2,
	},
}
