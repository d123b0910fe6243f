package password

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHashAndVerify(t *testing.T) {
	Convey("Given a plaintext password", t, func() {
		plain := "s3cret-Passw0rd"

		Convey("Hashing produces a verifiable hash", func() {
			hash, err := Hash(plain)
			So(err, ShouldBeNil)
			So(hash, ShouldNotEqual, plain)
			So(Verify(plain, hash), ShouldBeTrue)
		})

		Convey("A wrong password does not verify", func() {
			hash, err := Hash(plain)
			So(err, ShouldBeNil)
			So(Verify("s3cret-Passw0rd2", hash), ShouldBeFalse)
		})

		Convey("Hashing the same password twice yields different hashes", func() {
			h1, err := Hash(plain)
			So(err, ShouldBeNil)
			h2, err := Hash(plain)
			So(err, ShouldBeNil)
			So(h1, ShouldNotEqual, h2)
			So(Verify(plain, h1), ShouldBeTrue)
			So(Verify(plain, h2), ShouldBeTrue)
		})

		Convey("Garbage hashes never verify", func() {
			So(Verify(plain, ""), ShouldBeFalse)
			So(Verify(plain, "not-a-bcrypt-hash"), ShouldBeFalse)
		})
	})
}
