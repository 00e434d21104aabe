package models

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// User is an account. Username is stored trimmed and lower-cased.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Username     string    `gorm:"not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // never leaves the server
	CreatedAt    time.Time `json:"createdAt"`
}

// DrumKit describes a standard five-piece kit. Every slot is optional.
type DrumKit struct {
	KickDrum *string `json:"kickDrum,omitempty"`
	Snare    *string `json:"snare,omitempty"`
	RackTom1 *string `json:"rackTom1,omitempty"`
	RackTom2 *string `json:"rackTom2,omitempty"`
	FloorTom *string `json:"floorTom,omitempty"`
}

// AddOns describes cymbals, hardware and effects. Every slot is optional.
type AddOns struct {
	HiHats      *string `json:"hiHats,omitempty"`
	RideCymbal  *string `json:"rideCymbal,omitempty"`
	CrashCymbal *string `json:"crashCymbal,omitempty"`
	Hardware    *string `json:"hardware,omitempty"`
	Effects     *string `json:"effects,omitempty"`
}

// Post is a drummer's setup on a given album.
type Post struct {
	ID          string                      `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	DrummerName string                      `gorm:"not null" json:"drummerName"`
	Album       string                      `gorm:"not null" json:"album"`
	DrumKit     DrumKit                     `gorm:"embedded;embeddedPrefix:kit_" json:"drumKit"`
	AddOns      AddOns                      `gorm:"embedded;embeddedPrefix:addon_" json:"addOns"`
	UserID      string                      `gorm:"not null;index;type:varchar(36)" json:"userId"`
	User        *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes       datatypes.JSONSlice[string] `gorm:"not null" json:"likes"`
	Dislikes    datatypes.JSONSlice[string] `gorm:"not null" json:"dislikes"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (p *Post) LikeCount() int { return len(p.Likes) }

// SortByLikes orders posts by like count, most liked first. Ties go to the
// newer post, then to the smaller id.
func SortByLikes(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		if c := cmp.Compare(b.LikeCount(), a.LikeCount()); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortNewest orders posts newest first, then by id.
func SortNewest(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Comment belongs to a post. IsEdited flips to true on the first edit and
// stays there.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title     string    `gorm:"not null" json:"title"`
	Text      string    `gorm:"not null" json:"text"`
	UserID    string    `gorm:"not null;index;type:varchar(36)" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" json:"drummerPost"`
	IsEdited  bool      `gorm:"not null;default:false" json:"isEdited"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- Request payloads ---

type PostInput struct {
	DrummerName string   `json:"drummerName"`
	Album       string   `json:"album"`
	DrumKit     *DrumKit `json:"drumKit,omitempty"`
	AddOns      *AddOns  `json:"addOns,omitempty"`
}

// PostPatch is a partial update. Nil fields are left alone; inside the
// descriptors a non-nil slot replaces the stored slot.
type PostPatch struct {
	DrummerName *string  `json:"drummerName,omitempty"`
	Album       *string  `json:"album,omitempty"`
	DrumKit     *DrumKit `json:"drumKit,omitempty"`
	AddOns      *AddOns  `json:"addOns,omitempty"`
}

type CommentInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type CommentPatch struct {
	Title *string `json:"title,omitempty"`
	Text  *string `json:"text,omitempty"`
}

// --- Descriptor merging ---

// Clean trims every slot and drops blank ones.
func (k DrumKit) Clean() DrumKit {
	return DrumKit{
		KickDrum: slot(k.KickDrum),
		Snare:    slot(k.Snare),
		RackTom1: slot(k.RackTom1),
		RackTom2: slot(k.RackTom2),
		FloorTom: slot(k.FloorTom),
	}
}

// Merge overlays the slots present in p onto k.
func (k DrumKit) Merge(p DrumKit) DrumKit {
	k.KickDrum = mergeSlot(k.KickDrum, p.KickDrum)
	k.Snare = mergeSlot(k.Snare, p.Snare)
	k.RackTom1 = mergeSlot(k.RackTom1, p.RackTom1)
	k.RackTom2 = mergeSlot(k.RackTom2, p.RackTom2)
	k.FloorTom = mergeSlot(k.FloorTom, p.FloorTom)
	return k
}

func (a AddOns) Clean() AddOns {
	return AddOns{
		HiHats:      slot(a.HiHats),
		RideCymbal:  slot(a.RideCymbal),
		CrashCymbal: slot(a.CrashCymbal),
		Hardware:    slot(a.Hardware),
		Effects:     slot(a.Effects),
	}
}

func (a AddOns) Merge(p AddOns) AddOns {
	a.HiHats = mergeSlot(a.HiHats, p.HiHats)
	a.RideCymbal = mergeSlot(a.RideCymbal, p.RideCymbal)
	a.CrashCymbal = mergeSlot(a.CrashCymbal, p.CrashCymbal)
	a.Hardware = mergeSlot(a.Hardware, p.Hardware)
	a.Effects = mergeSlot(a.Effects, p.Effects)
	return a
}

func mergeSlot(cur, patch *string) *string {
	if patch == nil {
		return cur
	}
	return slot(patch)
}

func slot(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
