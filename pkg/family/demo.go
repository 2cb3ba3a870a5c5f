package family

// Demo returns the sample family shown when no data store is configured:
// two couples across three generations.
func Demo() Snapshot {
	return Snapshot{
		People: []Person{
			{
				ID:          "1",
				FirstName:   "Иван",
				MiddleName:  "Иванович",
				LastName:    "Иванов",
				BirthDate:   "1950-01-01",
				BirthPlace:  "Москва",
				PhotoURL:    "https://picsum.photos/seed/grandpa/200/200",
				Description: "Глава семьи.",
			},
			{
				ID:          "2",
				FirstName:   "Мария",
				MiddleName:  "Петровна",
				LastName:    "Иванова",
				BirthDate:   "1952-05-15",
				BirthPlace:  "Санкт-Петербург",
				PhotoURL:    "https://picsum.photos/seed/grandma/200/200",
				Description: "Любит печь пироги.",
			},
			{
				ID:          "3",
				FirstName:   "Алексей",
				MiddleName:  "Иванович",
				LastName:    "Иванов",
				BirthDate:   "1975-03-10",
				BirthPlace:  "Екатеринбург",
				PhotoURL:    "https://picsum.photos/seed/father/200/200",
				Description: "Работает программистом.",
			},
			{
				ID:          "4",
				FirstName:   "Елена",
				MiddleName:  "Сергеевна",
				LastName:    "Иванова",
				BirthDate:   "1978-08-20",
				BirthPlace:  "Новосибирск",
				PhotoURL:    "https://picsum.photos/seed/mother/200/200",
				Description: "Художник.",
			},
			{
				ID:          "5",
				FirstName:   "Дмитрий",
				MiddleName:  "Алексеевич",
				LastName:    "Иванов",
				BirthDate:   "2005-11-05",
				BirthPlace:  "Казань",
				PhotoURL:    "https://picsum.photos/seed/son/200/200",
				Description: "Студент.",
			},
		},
		Relationships: []Relationship{
			{ID: "r1", Person1ID: "1", Person2ID: "2", Kind: KindSpouse},
			{ID: "r2", Person1ID: "1", Person2ID: "3", Kind: KindParentChild},
			{ID: "r3", Person1ID: "2", Person2ID: "3", Kind: KindParentChild},
			{ID: "r4", Person1ID: "3", Person2ID: "4", Kind: KindSpouse},
			{ID: "r5", Person1ID: "3", Person2ID: "5", Kind: KindParentChild},
			{ID: "r6", Person1ID: "4", Person2ID: "5", Kind: KindParentChild},
		},
	}
}
